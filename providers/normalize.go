package providers

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsRE = regexp.MustCompile(`\d+`)

// ParseInt parst einen reinen Ziffern-String; alles andere wird nil.
// "N/A", "", "2021a" -> nil.
func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ExtractInt zieht die erste Ziffernfolge aus einem Freitext ("Author
// Order : 2 of 5" -> 2); nil wenn keine vorhanden.
func ExtractInt(s string) *int {
	m := digitsRE.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// ParseRupiah normalisiert Beträge wie "Rp. 50.000.000" zu 50000000.
// Punkte sind Tausendertrenner, Kommas Dezimaltrenner; nicht-numerische
// Reste ("N/A", "-") werden nil.
func ParseRupiah(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rp.")
	s = strings.TrimPrefix(s, "Rp")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// CleanDOI kollabiert die "none"-artigen Sentinels der Quelle zu nil und
// entfernt das "DOI:"-Präfix.
func CleanDOI(s string) *string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "DOI:")
	s = strings.TrimPrefix(s, "DOI :")
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "n/a", "none", "-":
		return nil
	}
	return &s
}

// SplitAuthors zerlegt eine Autorenliste an Kommas. Leere Einträge und die
// "..."-Kürzungsmarker der Quelle fliegen raus.
func SplitAuthors(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.Contains(p, "...") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// InferAuthorOrder leitet die Position der Profilinhaberin in einer
// Autorenliste her: der erste Eintrag, der ein Namenstoken (> 2 Zeichen)
// der Inhaberin enthält, bestimmt die Order. Kein Treffer -> nil; der
// Aufrufer entscheidet den quellenspezifischen Fallback.
func InferAuthorOrder(ownerName string, authors []string) *int {
	var keywords []string
	for _, tok := range strings.Fields(strings.ToLower(ownerName)) {
		if len(tok) > 2 {
			keywords = append(keywords, tok)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	for idx, name := range authors {
		lower := strings.ToLower(name)
		for _, key := range keywords {
			if strings.Contains(lower, key) {
				order := idx + 1
				return &order
			}
		}
	}
	return nil
}
