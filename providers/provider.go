package providers

import "context"

// Provider ist das Interface, das jeder Listing-Scraper (Garuda, Google
// Scholar, Scopus, Researches) implementieren muss.
type Provider interface {
	// Scrape läuft über alle Listing-Seiten eines Profils und gibt die
	// normalisierten Datensätze plus Fetch-Statistik zurück.
	Scrape(ctx context.Context, profile Profile) (*Result, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "garuda").
	Name() string
}
