package researches

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
	"sinta-collector/providers"
	"sinta-collector/providers/sintaweb"
)

// Fetcher scrapt die Forschungsprojekte eines SINTA-Profils
// (?view=researches).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Pages  sintaweb.PageSource
}

// NewFetcher erstellt eine neue Instanz des Research-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, pages sintaweb.PageSource) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Pages: pages}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "researches"
}

// Scrape läuft über alle Research-Seiten des Profils.
func (f *Fetcher) Scrape(ctx context.Context, profile providers.Profile) (*providers.Result, error) {
	log := f.Logger.With(zap.String("lecturer", profile.LecturerName), zap.String("provider", f.Name()))
	res := &providers.Result{}

	sintaweb.Paginate(ctx, f.Pages, log, profile.ProfileURL, "researches", f.Config.ListingMaxPages, &res.Stats, func(doc *goquery.Document) int {
		items := doc.Find(sintaweb.ItemSelector)
		res.Grants = append(res.Grants, ExtractGrants(doc, log)...)
		return items.Length()
	})

	log.Info("Research-Scrape abgeschlossen",
		zap.Int("grants", len(res.Grants)),
		zap.Int("pages", res.Stats.PagesFetched),
		zap.String("stopped", string(res.Stats.Stopped)))
	return res, nil
}

// ExtractGrants zieht alle Forschungsprojekte aus einer Listing-Seite.
func ExtractGrants(doc *goquery.Document, log *zap.Logger) []providers.GrantRecord {
	var grants []providers.GrantRecord

	doc.Find(sintaweb.ItemSelector).Each(func(i int, item *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Research-Item übersprungen", zap.Int("index", i), zap.Any("panic", r))
			}
		}()

		rec := extractItem(item)
		if rec.Title == "" {
			log.Warn("Research-Item ohne Titel übersprungen", zap.Int("index", i))
			return
		}
		grants = append(grants, rec)
	})

	return grants
}

func extractItem(item *goquery.Selection) providers.GrantRecord {
	var rec providers.GrantRecord

	rec.Title = sintaweb.CleanText(item.Find("div.ar-title").First().Text())
	rec.FundType = sintaweb.CleanText(item.Find("a.ar-pub").First().Text())

	metas := item.Find("div.ar-meta")

	// Erster Block trägt den Projektleiter als "Leader : Name".
	if metas.Length() > 0 {
		metas.Eq(0).Find("a").EachWithBreak(func(j int, a *goquery.Selection) bool {
			text := sintaweb.CleanText(a.Text())
			if sintaweb.ContainsFold(text, "Leader :") {
				rec.LeaderName = sintaweb.StripLabel(text, "Leader :")
				return false
			}
			return true
		})
	}

	// Zweiter Block listet die Personils als Profil-Links.
	if metas.Length() > 1 {
		seen := map[string]bool{}
		metas.Eq(1).Find("a").Each(func(j int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !strings.Contains(href, "/authors/profile/") {
				return
			}
			name := sintaweb.CleanText(a.Text())
			if name == "" || seen[name] {
				return
			}
			seen[name] = true
			rec.Personils = append(rec.Personils, name)
		})
	}

	// Dritter Block: Jahr, Status, Geldquelle und Fördersumme.
	if metas.Length() > 2 {
		rec.Year = providers.ExtractInt(metas.Eq(2).Find("a.ar-year").First().Text())
		metas.Eq(2).Find("a.ar-quartile").Each(func(j int, a *goquery.Selection) {
			text := sintaweb.CleanText(a.Text())
			switch {
			case a.HasClass("text-success"):
				rec.FundStatus = text
			case a.HasClass("text-info"):
				rec.FundSource = text
			default:
				rec.Fund = providers.ParseRupiah(text)
			}
		})
	}

	return rec
}
