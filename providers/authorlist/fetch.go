package authorlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
	"sinta-collector/providers"
	"sinta-collector/providers/sintaweb"
)

// Fetcher scrapt das Autoren-Verzeichnis eines Departments. Er hängt nicht
// am Provider-Interface, weil er pro Department statt pro Profil arbeitet.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Pages  sintaweb.PageSource
}

// NewFetcher erstellt eine neue Instanz des Verzeichnis-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, pages sintaweb.PageSource) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Pages: pages}
}

// Scrape läuft über die Verzeichnis-Seiten des konfigurierten Departments.
func (f *Fetcher) Scrape(ctx context.Context) ([]providers.AuthorRecord, providers.FetchStats, error) {
	log := f.Logger.With(zap.String("provider", "authorlist"))

	var (
		records []providers.AuthorRecord
		stats   providers.FetchStats
	)

	for page := 1; ; page++ {
		if page > f.Config.DirectoryMaxPages {
			stats.Stopped = providers.StopPageCap
			break
		}

		doc, err := f.Pages.GetPage(ctx, PageURL(f.Config.DepartmentURL, page))
		if err != nil {
			stats.FetchErrors++
			stats.Stopped = providers.StopFetchError
			log.Warn("Verzeichnis-Seite fehlgeschlagen", zap.Int("page", page), zap.Error(err))
			break
		}
		stats.PagesFetched++

		items := doc.Find("div.au-item")
		if items.Length() == 0 {
			stats.Stopped = providers.StopEmptyPage
			break
		}

		records = append(records, ExtractAuthors(doc, f.Config.SintaBaseURL, log)...)
	}

	log.Info("Verzeichnis-Scrape abgeschlossen",
		zap.Int("authors", len(records)),
		zap.Int("pages", stats.PagesFetched),
		zap.String("stopped", string(stats.Stopped)))
	return records, stats, nil
}

// PageURL hängt den page-Parameter an die Department-URL an.
func PageURL(departmentURL string, page int) string {
	sep := "?"
	if strings.Contains(departmentURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", departmentURL, sep, page)
}

// ExtractAuthors zieht alle Verzeichnis-Einträge aus einer Seite.
func ExtractAuthors(doc *goquery.Document, baseURL string, log *zap.Logger) []providers.AuthorRecord {
	var records []providers.AuthorRecord

	doc.Find("div.au-item").Each(func(i int, item *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Verzeichnis-Item übersprungen", zap.Int("index", i), zap.Any("panic", r))
			}
		}()

		rec := extractItem(item, baseURL)
		if rec.LecturerName == "" {
			log.Warn("Verzeichnis-Item ohne Namen übersprungen", zap.Int("index", i))
			return
		}
		records = append(records, rec)
	})

	return records
}

func extractItem(item *goquery.Selection, baseURL string) providers.AuthorRecord {
	var rec providers.AuthorRecord

	nameTag := item.Find("a").First()
	rec.LecturerName = sintaweb.CleanText(nameTag.Text())
	if href, ok := nameTag.Attr("href"); ok {
		rec.SintaProfileURL = sintaweb.AbsoluteProfileURL(baseURL, href)
	}

	rec.SintaID = sintaweb.StripLabel(sintaweb.CleanText(item.Find("div.profile-id").First().Text()), "ID :")

	// Vier Kennzahlen in fester Reihenfolge: SINTA 3Yr, SINTA,
	// Affil 3Yr, Affil. Fehlende Werte werden als "0" geführt.
	scores := []string{"0", "0", "0", "0"}
	item.Find("div.stat-num.text-center").Each(func(j int, s *goquery.Selection) {
		if j < len(scores) {
			if text := sintaweb.CleanText(s.Text()); text != "" {
				scores[j] = text
			}
		}
	})
	rec.SintaScore3Yr = scores[0]
	rec.SintaScoreTotal = scores[1]
	rec.AffilScore3Yr = scores[2]
	rec.AffilScoreTotal = scores[3]

	return rec
}
