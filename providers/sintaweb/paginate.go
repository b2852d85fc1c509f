package sintaweb

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/providers"
)

// Paginate treibt den Seiten-Loop für ein Profil: Seite 1, 2, 3, ... bis
// eine Seite keine Items mehr liefert, ein Fetch fehlschlägt oder das
// Seitenlimit erreicht ist. extract gibt die Item-Anzahl der Seite zurück.
//
// Ein Fetch-Fehler stoppt die Pagination genau wie eine leere Seite (die
// Quelle unterscheidet das nicht), aber der StopReason in stats hält fest,
// was wirklich passiert ist.
func Paginate(ctx context.Context, src PageSource, logger *zap.Logger, profileURL, view string, maxPages int, stats *providers.FetchStats, extract func(doc *goquery.Document) int) {
	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			stats.Stopped = providers.StopPageCap
			return
		}

		doc, err := src.GetListing(ctx, profileURL, view, page)
		if err != nil {
			stats.FetchErrors++
			stats.Stopped = providers.StopFetchError
			logger.Warn("Fetch fehlgeschlagen, Pagination endet hier",
				zap.String("profile_url", profileURL),
				zap.String("view", view),
				zap.Int("page", page),
				zap.Error(err))
			return
		}
		stats.PagesFetched++

		if extract(doc) == 0 {
			stats.Stopped = providers.StopEmptyPage
			return
		}
	}
}
