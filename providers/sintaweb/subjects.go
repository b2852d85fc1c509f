package sintaweb

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractSubjects liest die Fachgebiets-Tags von einer Profilseite.
// Fehlt der Block, kommt eine leere Liste zurück.
func ExtractSubjects(doc *goquery.Document) []string {
	var subjects []string
	doc.Find("div.profile-subject.mt-3 a").Each(func(i int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			subjects = append(subjects, text)
		}
	})
	return subjects
}

// AbsoluteProfileURL ergänzt relative Profil-Links um die Basis-URL.
func AbsoluteProfileURL(baseURL, profileURL string) string {
	if profileURL == "" || strings.HasPrefix(profileURL, "http") {
		return profileURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(profileURL, "/")
}
