package sintaweb

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSubjects(t *testing.T) {
	page := `<html><body>
	<div class="profile-subject mt-3">
	  <a href="#">Computer Vision</a>
	  <a href="#">Image Processing</a>
	  <a href="#"> </a>
	</div>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, []string{"Computer Vision", "Image Processing"}, ExtractSubjects(doc))
}

func TestExtractSubjectsMissingBlock(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	assert.Empty(t, ExtractSubjects(doc))
}

func TestAbsoluteProfileURL(t *testing.T) {
	assert.Equal(t, "https://x.test/authors/profile/1",
		AbsoluteProfileURL("https://x.test/", "/authors/profile/1"))
	assert.Equal(t, "https://y.test/authors/profile/2",
		AbsoluteProfileURL("https://x.test", "https://y.test/authors/profile/2"))
	assert.Equal(t, "", AbsoluteProfileURL("https://x.test", ""))
}
