package sintaweb

import "strings"

// ItemSelector ist die strukturelle Signatur eines Listing-Eintrags auf
// allen view-Seiten (Publikationen wie Forschungsprojekte).
const ItemSelector = "div.ar-list-item.mb-5"

// CleanText trimmt Whitespace und die Emoji-Präfixe, die SINTA in manche
// Metadaten-Links rendert.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	for _, junk := range []string{"📅", "🔗", "📊"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	return strings.TrimSpace(s)
}

// StripLabel entfernt ein "Label :"-Präfix ("Accred : S2" -> "S2").
func StripLabel(s, label string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, label); idx >= 0 {
		s = s[idx+len(label):]
	}
	return strings.TrimSpace(s)
}

// ContainsFold prüft Substring case-insensitiv.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
