package garuda

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/sintaweb"
)

// Fetcher scrapt die Garuda-Publikationsliste eines SINTA-Profils
// (?view=garuda).
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
	Pages  sintaweb.PageSource
}

// NewFetcher erstellt eine neue Instanz des Garuda-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger, pages sintaweb.PageSource) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger, Pages: pages}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "garuda"
}

// Scrape läuft über alle Garuda-Seiten des Profils.
func (f *Fetcher) Scrape(ctx context.Context, profile providers.Profile) (*providers.Result, error) {
	log := f.Logger.With(zap.String("lecturer", profile.LecturerName), zap.String("provider", f.Name()))
	res := &providers.Result{}

	sintaweb.Paginate(ctx, f.Pages, log, profile.ProfileURL, "garuda", f.Config.ListingMaxPages, &res.Stats, func(doc *goquery.Document) int {
		items := doc.Find(sintaweb.ItemSelector)
		res.Papers = append(res.Papers, ExtractPapers(doc, log)...)
		return items.Length()
	})

	log.Info("Garuda-Scrape abgeschlossen",
		zap.Int("papers", len(res.Papers)),
		zap.Int("pages", res.Stats.PagesFetched),
		zap.String("stopped", string(res.Stats.Stopped)))
	return res, nil
}

// ExtractPapers zieht alle Publikationseinträge aus einer Listing-Seite.
// Fehlende Unterelemente degradieren zu Sentinels; ein kaputtes Item wird
// geloggt und übersprungen, nie die ganze Seite.
func ExtractPapers(doc *goquery.Document, log *zap.Logger) []providers.PaperRecord {
	var papers []providers.PaperRecord

	doc.Find(sintaweb.ItemSelector).Each(func(i int, item *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("Garuda-Item übersprungen", zap.Int("index", i), zap.Any("panic", r))
			}
		}()

		rec := extractItem(item)
		if rec.Title == "" {
			log.Warn("Garuda-Item ohne Titel übersprungen", zap.Int("index", i))
			return
		}
		papers = append(papers, rec)
	})

	return papers
}

// ExtractAbstract zieht den Abstract-Text aus einer Garuda-Detailseite.
// Garuda liefert den Text in einem xmp-Tag innerhalb von
// div.abstract-article; fehlt beides, kommt "" zurück.
func ExtractAbstract(doc *goquery.Document) string {
	sel := doc.Find("div.abstract-article xmp").First()
	if sel.Length() == 0 {
		sel = doc.Find("div.abstract-article").First()
	}
	return sintaweb.CleanText(sel.Text())
}

func extractItem(item *goquery.Selection) providers.PaperRecord {
	rec := providers.PaperRecord{Source: models.SourceGaruda}

	titleTag := item.Find("div.ar-title a").First()
	rec.Title = sintaweb.CleanText(titleTag.Text())
	rec.PublicationLink, _ = titleTag.Attr("href")

	rec.Journal = sintaweb.CleanText(item.Find("div.ar-meta a.ar-pub").First().Text())

	// Zweiter Metadaten-Block: Author Order, Jahr, DOI, Accred und die
	// Autorenliste, unterschieden über Icon-Klassen bzw. Schlüsselwörter.
	metas := item.Find("div.ar-meta")
	if metas.Length() < 2 {
		return rec
	}
	metas.Eq(1).Find(`a[href="#!"]`).Each(func(j int, a *goquery.Selection) {
		text := sintaweb.CleanText(a.Text())
		if sintaweb.ContainsFold(text, "Author Order") {
			rec.AuthorOrder = providers.ExtractInt(text)
			return
		}
		icon := a.Find("i").First()
		switch {
		case icon.HasClass("zmdi-calendar"):
			rec.Year = providers.ExtractInt(text)
		case icon.HasClass("zmdi-comment-list"):
			rec.DOI = providers.CleanDOI(text)
		case icon.HasClass("zmdi-chart-donut"):
			rec.Accred = sintaweb.StripLabel(text, "Accred :")
		case icon.Length() == 0:
			if text != "" {
				rec.Authors = append(rec.Authors, text)
			}
		}
	})

	return rec
}
