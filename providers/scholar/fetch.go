package scholar

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/sintaweb"
)

// Fetcher scrapt die Google-Scholar-Publikationsliste eines SINTA-Profils
// (?view=google_scholar).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Pages  sintaweb.PageSource
}

// NewFetcher erstellt eine neue Instanz des Scholar-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, pages sintaweb.PageSource) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Pages: pages}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "scholar"
}

// Scrape läuft über alle Scholar-Seiten des Profils.
func (f *Fetcher) Scrape(ctx context.Context, profile providers.Profile) (*providers.Result, error) {
	log := f.Logger.With(zap.String("lecturer", profile.LecturerName), zap.String("provider", f.Name()))
	res := &providers.Result{}

	sintaweb.Paginate(ctx, f.Pages, log, profile.ProfileURL, "google_scholar", f.Config.ListingMaxPages, &res.Stats, func(doc *goquery.Document) int {
		items := doc.Find(sintaweb.ItemSelector)
		res.Papers = append(res.Papers, ExtractPapers(doc, profile.LecturerName, log)...)
		return items.Length()
	})

	log.Info("Scholar-Scrape abgeschlossen",
		zap.Int("papers", len(res.Papers)),
		zap.Int("pages", res.Stats.PagesFetched),
		zap.String("stopped", string(res.Stats.Stopped)))
	return res, nil
}

// ExtractPapers zieht alle Scholar-Einträge aus einer Listing-Seite.
// Scholar liefert keine Author Order; sie wird aus der Autorenliste gegen
// den Namen der Profilinhaberin hergeleitet, Fallback ist Position 1.
func ExtractPapers(doc *goquery.Document, lecturerName string, log *zap.Logger) []providers.PaperRecord {
	var papers []providers.PaperRecord

	doc.Find(sintaweb.ItemSelector).Each(func(i int, item *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Scholar-Item übersprungen", zap.Int("index", i), zap.Any("panic", r))
			}
		}()

		rec := extractItem(item, lecturerName)
		if rec.Title == "" {
			log.Warn("Scholar-Item ohne Titel übersprungen", zap.Int("index", i))
			return
		}
		papers = append(papers, rec)
	})

	return papers
}

func extractItem(item *goquery.Selection, lecturerName string) providers.PaperRecord {
	rec := providers.PaperRecord{Source: models.SourceScholar}

	titleTag := item.Find("div.ar-title a").First()
	rec.Title = sintaweb.CleanText(titleTag.Text())
	rec.PublicationLink, _ = titleTag.Attr("href")

	rec.Journal = sintaweb.CleanText(item.Find("a.ar-pub").First().Text())

	metas := item.Find("div.ar-meta")

	// Erster Metadaten-Block: "Authors: A, B, ..." als Freitext.
	if metas.Length() > 0 {
		first := sintaweb.CleanText(metas.Eq(0).Text())
		if idx := strings.Index(first, "Authors:"); idx >= 0 {
			rec.Authors = providers.SplitAuthors(first[idx+len("Authors:"):])
		}
	}

	// Zweiter Block: Jahr und Zitationen über Icon-Klassen.
	if metas.Length() > 1 {
		metas.Eq(1).Find(`a[href="#!"]`).Each(func(j int, a *goquery.Selection) {
			text := sintaweb.CleanText(a.Text())
			icon := a.Find("i").First()
			switch {
			case icon.HasClass("zmdi-calendar"):
				rec.Year = providers.ExtractInt(text)
			case icon.HasClass("zmdi-comment-list"):
				rec.CitationCount = providers.ExtractInt(text)
			}
		})
	}

	rec.AuthorOrder = providers.InferAuthorOrder(lecturerName, rec.Authors)
	if rec.AuthorOrder == nil {
		// Scholar-Fallback: Profilinhaberin als Erstautorin annehmen.
		one := 1
		rec.AuthorOrder = &one
	}

	return rec
}
