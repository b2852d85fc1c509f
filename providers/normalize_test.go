package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	assert.Nil(t, ParseInt(""))
	assert.Nil(t, ParseInt("N/A"))
	assert.Nil(t, ParseInt("2021a"))

	got := ParseInt(" 2021 ")
	require.NotNil(t, got)
	assert.Equal(t, 2021, *got)
}

func TestExtractInt(t *testing.T) {
	got := ExtractInt("Author Order : 2 of 5")
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)

	got = ExtractInt("Cited : 17")
	require.NotNil(t, got)
	assert.Equal(t, 17, *got)

	assert.Nil(t, ExtractInt("keine Zahlen hier"))
}

func TestParseRupiah(t *testing.T) {
	got := ParseRupiah("Rp. 50.000.000")
	require.NotNil(t, got)
	assert.Equal(t, float64(50000000), *got)

	got = ParseRupiah("Rp 1.500.000,50")
	require.NotNil(t, got)
	assert.Equal(t, 1500000.5, *got)

	assert.Nil(t, ParseRupiah("N/A"))
	assert.Nil(t, ParseRupiah(""))
	assert.Nil(t, ParseRupiah("-"))
}

func TestCleanDOI(t *testing.T) {
	got := CleanDOI("DOI: 10.1234/abc")
	require.NotNil(t, got)
	assert.Equal(t, "10.1234/abc", *got)

	assert.Nil(t, CleanDOI(""))
	assert.Nil(t, CleanDOI("n/a"))
	assert.Nil(t, CleanDOI("None"))
	assert.Nil(t, CleanDOI("-"))
	assert.Nil(t, CleanDOI("DOI: n/a"))
}

func TestSplitAuthors(t *testing.T) {
	got := SplitAuthors(" A Susanto, B Wibowo , , C Putri...")
	assert.Equal(t, []string{"A Susanto", "B Wibowo"}, got)

	assert.Empty(t, SplitAuthors(""))
}

func TestInferAuthorOrder(t *testing.T) {
	got := InferAuthorOrder("Ajib Susanto", []string{"A Susanto", "B Wibowo"})
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)

	got = InferAuthorOrder("Budi Wibowo", []string{"A Susanto", "B Wibowo", "C Putri"})
	require.NotNil(t, got)
	assert.Equal(t, 2, *got)

	// Kein Token der Inhaberin in der Liste -> nil, der Aufrufer
	// entscheidet den Fallback.
	assert.Nil(t, InferAuthorOrder("Dewi Lestari", []string{"A Susanto", "B Wibowo"}))

	// Nur Kurztoken (<= 2 Zeichen) liefern keine Keywords.
	assert.Nil(t, InferAuthorOrder("A B", []string{"A Susanto"}))
}
