package scholar

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sinta-collector/models"
)

const listingPage = `
<html><body>
<div class="ar-list-item mb-5">
  <div class="ar-title">
    <a href="https://scholar.google.com/citations?view_op=view_citation&citation_for_view=abc">Machine Learning untuk Klasifikasi Citra</a>
  </div>
  <div class="ar-meta">
    <a href="#!">Authors: A Susanto, B Wibowo, C Putri</a>
  </div>
  <div class="ar-meta">
    <a class="ar-pub" href="#!">Jurnal Ilmu Komputer</a>
    <a href="#!"><i class="zmdi zmdi-calendar"></i> 2022</a>
    <a href="#!"><i class="zmdi zmdi-comment-list"></i> Cited : 14</a>
  </div>
</div>
<div class="ar-list-item mb-5">
  <div class="ar-title">
    <a href="https://scholar.google.com/citations?view_op=view_citation&citation_for_view=def">Artikel Fremder Autoren</a>
  </div>
  <div class="ar-meta">
    <a href="#!">Authors: X Tan, Y Lim</a>
  </div>
  <div class="ar-meta">
    <a class="ar-pub" href="#!">Proceedings of Something</a>
  </div>
</div>
</body></html>`

func TestExtractPapers(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage))
	require.NoError(t, err)

	papers := ExtractPapers(doc, "Ajib Susanto", zap.NewNop())
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, models.SourceScholar, first.Source)
	assert.Equal(t, "Machine Learning untuk Klasifikasi Citra", first.Title)
	assert.Equal(t, "Jurnal Ilmu Komputer", first.Journal)
	assert.Equal(t, []string{"A Susanto", "B Wibowo", "C Putri"}, first.Authors)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2022, *first.Year)
	require.NotNil(t, first.CitationCount)
	assert.Equal(t, 14, *first.CitationCount)
	require.NotNil(t, first.AuthorOrder)
	assert.Equal(t, 1, *first.AuthorOrder)

	// Kein Namens-Match -> Fallback auf Position 1.
	second := papers[1]
	require.NotNil(t, second.AuthorOrder)
	assert.Equal(t, 1, *second.AuthorOrder)
	assert.Nil(t, second.Year)
	assert.Nil(t, second.CitationCount)
}
