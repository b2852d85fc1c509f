package sintaweb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"sinta-collector/config"
)

// ErrBadStatus signalisiert einen Nicht-200-Status der Quelle.
var ErrBadStatus = errors.New("unexpected http status")

// Kleiner User-Agent-Pool; pro Request wird zufällig gewählt, damit der
// Crawler nicht sofort als Bot auffällt.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/117.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
}

// rotatingTransport setzt pro Request einen User-Agent aus dem Pool.
type rotatingTransport struct {
	Transport http.RoundTripper
}

func (t *rotatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	return t.Transport.RoundTrip(req)
}

// PageSource liefert geparste Listing-Seiten. Die HTTP- und die
// Browser-Variante implementieren dasselbe Interface.
type PageSource interface {
	GetListing(ctx context.Context, profileURL, view string, page int) (*goquery.Document, error)
	GetPage(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Snapshotter archiviert rohe Antwort-Bytes (z.B. nach S3), um bei
// Layout-Drift die Originalseite noch zu haben.
type Snapshotter interface {
	Snapshot(ctx context.Context, key string, body []byte) error
}

// PageFetcher ist der HTTP-basierte PageSource: ein GET pro Seite, feste
// Wartezeit danach, beschränkter Timeout.
type PageFetcher struct {
	client    *http.Client
	logger    *zap.Logger
	delay     time.Duration
	snapshots Snapshotter
}

// NewPageFetcher erstellt den Standard-Fetcher aus der Konfiguration.
func NewPageFetcher(cfg *config.Config, logger *zap.Logger) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{
			Timeout:   cfg.FetchTimeout,
			Transport: &rotatingTransport{Transport: http.DefaultTransport},
		},
		logger: logger,
		delay:  cfg.FetchDelay,
	}
}

// WithSnapshots aktiviert das Archivieren der rohen Seiten.
func (f *PageFetcher) WithSnapshots(s Snapshotter) *PageFetcher {
	f.snapshots = s
	return f
}

// ListingURL baut die URL einer Listing-Seite: Profil + view-Selektor +
// Seitennummer.
func ListingURL(profileURL, view string, page int) string {
	sep := "?"
	if strings.Contains(profileURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sview=%s&page=%d", profileURL, sep, view, page)
}

// GetListing holt eine Listing-Seite eines Profils.
func (f *PageFetcher) GetListing(ctx context.Context, profileURL, view string, page int) (*goquery.Document, error) {
	return f.GetPage(ctx, ListingURL(profileURL, view, page))
}

// GetPage führt genau einen GET aus und parst die Antwort. Nach jedem
// Request wird die feste Wartezeit geschlafen, Erfolg wie Fehler.
func (f *PageFetcher) GetPage(ctx context.Context, rawURL string) (*goquery.Document, error) {
	defer func() {
		if f.delay > 0 {
			time.Sleep(f.delay)
		}
	}()

	f.logger.Info("Hole Seite", zap.String("url", rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if f.snapshots != nil {
		key := snapshotKey(rawURL)
		if err := f.snapshots.Snapshot(ctx, key, body); err != nil {
			f.logger.Warn("Snapshot fehlgeschlagen", zap.String("key", key), zap.Error(err))
		}
	}

	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// snapshotKey macht aus einer URL einen S3-tauglichen Objektschlüssel.
func snapshotKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unparsed/" + strings.NewReplacer("/", "_", "?", "_", "&", "_").Replace(rawURL)
	}
	path := strings.Trim(u.Path, "/")
	query := strings.NewReplacer("=", "-", "&", "_").Replace(u.RawQuery)
	ts := time.Now().UTC().Format("2006-01-02")
	if query == "" {
		return fmt.Sprintf("%s/%s.html", ts, path)
	}
	return fmt.Sprintf("%s/%s_%s.html", ts, path, query)
}
