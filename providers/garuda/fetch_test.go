package garuda

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
    <a href="https://garuda.kemdikbud.go.id/documents/detail/123">Deteksi Dini Penyakit Padi</a>
  </div>
  <div class="ar-meta">
    <a class="ar-pub" href="#!">Jurnal Teknologi Pertanian</a>
  </div>
  <div class="ar-meta">
    <a href="#!">Author Order : 2 of 4</a>
    <a href="#!"><i class="zmdi zmdi-calendar"></i> 2021</a>
    <a href="#!"><i class="zmdi zmdi-comment-list"></i> DOI: 10.1234/jtp.123</a>
    <a href="#!"><i class="zmdi zmdi-chart-donut"></i> Accred : S2</a>
    <a href="#!">A Susanto</a>
    <a href="#!">B Wibowo</a>
  </div>
</div>
<div class="ar-list-item mb-5">
  <div class="ar-title">
    <a href="https://garuda.kemdikbud.go.id/documents/detail/456">Artikel Ohne Metadaten</a>
  </div>
  <div class="ar-meta">
    <a class="ar-pub" href="#!">Jurnal Informatika</a>
  </div>
  <div class="ar-meta">
    <a href="#!"><i class="zmdi zmdi-calendar"></i> N/A</a>
    <a href="#!"><i class="zmdi zmdi-comment-list"></i> none</a>
  </div>
</div>
<div class="ar-list-item mb-5">
  <div class="ar-title"></div>
</div>
</body></html>`

func TestExtractPapers(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage))
	require.NoError(t, err)

	papers := ExtractPapers(doc, zap.NewNop())
	// Das dritte Item hat keinen Titel und fliegt raus.
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, models.SourceGaruda, first.Source)
	assert.Equal(t, "Deteksi Dini Penyakit Padi", first.Title)
	assert.Equal(t, "https://garuda.kemdikbud.go.id/documents/detail/123", first.PublicationLink)
	assert.Equal(t, "Jurnal Teknologi Pertanian", first.Journal)
	require.NotNil(t, first.AuthorOrder)
	assert.Equal(t, 2, *first.AuthorOrder)
	require.NotNil(t, first.Year)
	assert.Equal(t, 2021, *first.Year)
	require.NotNil(t, first.DOI)
	assert.Equal(t, "10.1234/jtp.123", *first.DOI)
	assert.Equal(t, "S2", first.Accred)
	assert.Equal(t, []string{"A Susanto", "B Wibowo"}, first.Authors)

	// Fehlende bzw. Sentinel-Werte degradieren zu nil statt zu kippen.
	second := papers[1]
	assert.Equal(t, "Artikel Ohne Metadaten", second.Title)
	assert.Nil(t, second.Year)
	assert.Nil(t, second.DOI)
	assert.Nil(t, second.AuthorOrder)
	assert.Empty(t, second.Accred)
}

func TestExtractAbstract(t *testing.T) {
	detailPage := `
<html><body>
<div class="abstract-article">
  <xmp class="abstract-article">
    Penelitian ini membahas watermarking citra digital.
  </xmp>
</div>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailPage))
	require.NoError(t, err)
	assert.Equal(t, "Penelitian ini membahas watermarking citra digital.", ExtractAbstract(doc))

	// Ohne xmp-Tag zählt der Blocktext, ohne Block kommt "" zurück.
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="abstract-article">Nur Blocktext.</div>`))
	require.NoError(t, err)
	assert.Equal(t, "Nur Blocktext.", ExtractAbstract(doc))

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(`<div class="other"></div>`))
	require.NoError(t, err)
	assert.Empty(t, ExtractAbstract(doc))
}
