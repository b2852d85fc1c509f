package scopus

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/sintaweb"
)

// Fetcher scrapt die Scopus-Publikationsliste eines SINTA-Profils
// (?view=scopus). Die Scopus-Ansicht rendert teilweise clientseitig,
// deshalb kann hier wahlweise der Browser-Fetcher als PageSource
// eingehängt werden (SCOPUS_USE_BROWSER).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Pages  sintaweb.PageSource
}

// NewFetcher erstellt eine neue Instanz des Scopus-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, pages sintaweb.PageSource) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Pages: pages}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "scopus"
}

// Scrape läuft über alle Scopus-Seiten des Profils.
func (f *Fetcher) Scrape(ctx context.Context, profile providers.Profile) (*providers.Result, error) {
	log := f.Logger.With(zap.String("lecturer", profile.LecturerName), zap.String("provider", f.Name()))
	res := &providers.Result{}

	sintaweb.Paginate(ctx, f.Pages, log, profile.ProfileURL, "scopus", f.Config.ListingMaxPages, &res.Stats, func(doc *goquery.Document) int {
		items := doc.Find(sintaweb.ItemSelector)
		res.Papers = append(res.Papers, ExtractPapers(doc, log)...)
		return items.Length()
	})

	log.Info("Scopus-Scrape abgeschlossen",
		zap.Int("papers", len(res.Papers)),
		zap.Int("pages", res.Stats.PagesFetched),
		zap.String("stopped", string(res.Stats.Stopped)))
	return res, nil
}

// ExtractPapers zieht alle Scopus-Einträge aus einer Listing-Seite.
func ExtractPapers(doc *goquery.Document, log *zap.Logger) []providers.PaperRecord {
	var papers []providers.PaperRecord

	doc.Find(sintaweb.ItemSelector).Each(func(i int, item *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Scopus-Item übersprungen", zap.Int("index", i), zap.Any("panic", r))
			}
		}()

		rec := extractItem(item)
		if rec.Title == "" {
			log.Warn("Scopus-Item ohne Titel übersprungen", zap.Int("index", i))
			return
		}
		papers = append(papers, rec)
	})

	return papers
}

func extractItem(item *goquery.Selection) providers.PaperRecord {
	rec := providers.PaperRecord{Source: models.SourceScopus}

	titleTag := item.Find("div.ar-title a").First()
	rec.Title = sintaweb.CleanText(titleTag.Text())
	rec.PublicationLink, _ = titleTag.Attr("href")

	// Quartil steht als erster #!-Link vor dem Journal-Link.
	rec.Accred = sintaweb.CleanText(item.Find(`a[href="#!"]`).First().Text())
	rec.Journal = sintaweb.CleanText(item.Find("a.ar-pub").First().Text())

	item.Find("a").Each(func(j int, a *goquery.Selection) {
		text := sintaweb.CleanText(a.Text())
		switch {
		case sintaweb.ContainsFold(text, "Author Order"):
			rec.AuthorOrder = providers.ExtractInt(text)
		case sintaweb.ContainsFold(text, "Creator :"):
			rec.Creator = sintaweb.StripLabel(text, "Creator :")
		}
	})

	rec.Year = providers.ExtractInt(item.Find("a.ar-year").First().Text())
	rec.CitationCount = providers.ExtractInt(item.Find("a.ar-cited").First().Text())

	return rec
}
