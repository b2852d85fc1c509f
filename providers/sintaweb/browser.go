package sintaweb

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserFetcher ist die Headless-Browser-Variante des PageSource für
// Views, die plain HTTP wegen Bot-Erkennung abweisen. Stateful Session,
// echte Navigation, menschenähnliche Wartezeit.
type BrowserFetcher struct {
	logger *zap.Logger
	delay  time.Duration
}

// NewBrowserFetcher erstellt einen chromedp-basierten Fetcher.
func NewBrowserFetcher(logger *zap.Logger, delay time.Duration) *BrowserFetcher {
	return &BrowserFetcher{logger: logger, delay: delay}
}

// GetListing navigiert auf eine Listing-Seite und gibt das gerenderte
// Dokument zurück.
func (b *BrowserFetcher) GetListing(ctx context.Context, profileURL, view string, page int) (*goquery.Document, error) {
	return b.GetPage(ctx, ListingURL(profileURL, view, page))
}

// GetPage navigiert im Browser auf die URL und parst das gerenderte HTML.
func (b *BrowserFetcher) GetPage(ctx context.Context, rawURL string) (*goquery.Document, error) {
	defer func() {
		if b.delay > 0 {
			time.Sleep(b.delay)
		}
	}()

	b.logger.Info("Hole Seite über Browser", zap.String("url", rawURL))

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var content string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &content),
	)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(strings.NewReader(content))
}
