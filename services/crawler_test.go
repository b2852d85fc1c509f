package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/authorlist"
)

// fakePages liefert vorbereitete Seiten statt echter HTTP-Antworten.
type fakePages struct {
	pages map[string]string
}

func (f *fakePages) GetListing(ctx context.Context, profileURL, view string, page int) (*goquery.Document, error) {
	return f.GetPage(ctx, fmt.Sprintf("%s?view=%s&page=%d", profileURL, view, page))
}

func (f *fakePages) GetPage(ctx context.Context, rawURL string) (*goquery.Document, error) {
	html, ok := f.pages[rawURL]
	if !ok {
		html = "<html><body></body></html>"
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// fakeProvider gibt immer dasselbe Ergebnis zurück.
type fakeProvider struct {
	name   string
	result *providers.Result
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Scrape(ctx context.Context, profile providers.Profile) (*providers.Result, error) {
	return f.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		DepartmentURL:     "https://sinta.test/affiliations/authors/informatika",
		SintaBaseURL:      "https://sinta.test",
		DirectoryMaxPages: 3,
		ListingMaxPages:   5,
		SyncItemLimit:     5,
		ArticleDedupMode:  DedupTitleSource,
		EnabledProviders:  "garuda",
	}
}

func seedLecturer(t *testing.T, db *gorm.DB, name, profileURL string) {
	t.Helper()
	user := models.User{Name: name}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Author{UserID: user.ID, SintaProfileURL: profileURL}).Error)
}

func TestRunArticles(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	seedLecturer(t, db, "Ajib Susanto", "https://sinta.test/authors/profile/1")

	prov := &fakeProvider{
		name: "garuda",
		result: &providers.Result{
			Papers: []providers.PaperRecord{
				{Source: models.SourceGaruda, Title: "Paper A"},
				{Source: models.SourceGaruda, Title: "Paper B"},
				{Source: models.SourceGaruda, Title: "Paper C"},
			},
			Stats: providers.FetchStats{PagesFetched: 2, Stopped: providers.StopEmptyPage},
		},
	}

	svc := NewCrawlService(cfg, db, zap.NewNop(), []providers.Provider{prov}, nil, &fakePages{})

	run, err := svc.RunArticles(context.Background(), "garuda", "api", 2)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, models.CrawlRunSuccess, run.Status)
	assert.Equal(t, 1, run.ProfilesProcessed)
	assert.Equal(t, 2, run.PagesFetched)
	// Das Limit schneidet auf zwei Items ab.
	assert.Equal(t, 2, run.ItemsScraped)
	assert.Equal(t, 2, run.Inserted)
	assert.Equal(t, 0, run.Skipped)
	require.NotNil(t, run.FinishedAt)

	var articleCount int64
	db.Model(&models.Article{}).Count(&articleCount)
	assert.Equal(t, int64(2), articleCount)

	// Der Durchlauf steht in der Historie.
	var stored models.CrawlRun
	require.NoError(t, db.First(&stored, run.ID).Error)
	assert.Equal(t, "garuda", stored.Source)
	assert.Equal(t, "api", stored.TriggerSource)
}

func TestRunArticlesUnknownSource(t *testing.T) {
	db := testDB(t)
	svc := NewCrawlService(testConfig(), db, zap.NewNop(), nil, nil, &fakePages{})

	_, err := svc.RunArticles(context.Background(), "pubmed", "api", 0)
	require.Error(t, err)
}

func TestRunDirectory(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()

	pageOne := `<html><body>
	<div class="au-item">
	  <a href="/authors/profile/1">AJIB SUSANTO</a>
	  <div class="profile-id">ID : 1</div>
	  <div class="stat-num text-center">10</div>
	</div>
	</body></html>`

	pages := &fakePages{pages: map[string]string{
		cfg.DepartmentURL + "?page=1": pageOne,
	}}
	directory := authorlist.NewFetcher(cfg, zap.NewNop(), pages)
	svc := NewCrawlService(cfg, db, zap.NewNop(), nil, directory, pages)

	run, err := svc.RunDirectory(context.Background(), "api")
	require.NoError(t, err)

	assert.Equal(t, models.CrawlRunSuccess, run.Status)
	// Seite 2 war leer, also zwei Fetches und ein Item.
	assert.Equal(t, 2, run.PagesFetched)
	assert.Equal(t, 1, run.ItemsScraped)
	assert.Equal(t, 1, run.Inserted)

	var author models.Author
	require.NoError(t, db.Preload("User").First(&author).Error)
	assert.Equal(t, "AJIB SUSANTO", author.User.Name)
	assert.Equal(t, "https://sinta.test/authors/profile/1", author.SintaProfileURL)
	assert.Equal(t, "informatika", author.Department)
}

func TestRunArticlesSurvivesStoreErrors(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	seedLecturer(t, db, "Ajib Susanto", "https://sinta.test/authors/profile/1")
	seedLecturer(t, db, "Budi Wibowo", "https://sinta.test/authors/profile/2")

	prov := &fakeProvider{
		name: "garuda",
		result: &providers.Result{
			Papers: []providers.PaperRecord{
				{Source: models.SourceGaruda, Title: "Paper A"},
			},
		},
	}
	svc := NewCrawlService(cfg, db, zap.NewNop(), []providers.Provider{prov}, nil, &fakePages{})

	// Weggezogene Tabelle: jeder Speicherversuch schlägt fehl, trotzdem
	// muss der Lauf beide Profile abarbeiten und erfolgreich enden.
	require.NoError(t, db.Migrator().DropTable(&models.Article{}))

	run, err := svc.RunArticles(context.Background(), "garuda", "api", 0)
	require.NoError(t, err)
	assert.Equal(t, models.CrawlRunSuccess, run.Status)
	assert.Equal(t, 2, run.ProfilesProcessed)
	assert.Equal(t, 0, run.Inserted)
	assert.Equal(t, 2, run.Skipped)
}

func TestRunAbstracts(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()

	detailURL := "https://garuda.test/documents/detail/123"
	require.NoError(t, db.Create(&models.Article{
		Title: "Paper A", Source: models.SourceGaruda, ArticleURL: detailURL,
	}).Error)
	// Ohne URL bzw. aus fremder Quelle bleibt der Artikel unangetastet.
	require.NoError(t, db.Create(&models.Article{
		Title: "Paper B", Source: models.SourceGaruda,
	}).Error)
	require.NoError(t, db.Create(&models.Article{
		Title: "Paper C", Source: models.SourceScholar, ArticleURL: detailURL,
	}).Error)

	detailPage := `<html><body>
	<div class="abstract-article">
	  <xmp class="abstract-article">Penelitian ini membahas watermarking citra digital.</xmp>
	</div>
	</body></html>`

	pages := &fakePages{pages: map[string]string{detailURL: detailPage}}
	svc := NewCrawlService(cfg, db, zap.NewNop(), nil, nil, pages)

	run, err := svc.RunAbstracts(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, models.CrawlRunSuccess, run.Status)
	assert.Equal(t, 1, run.ItemsScraped)
	assert.Equal(t, 1, run.PagesFetched)
	assert.Equal(t, 1, run.Inserted)

	var article models.Article
	require.NoError(t, db.Where("title = ?", "Paper A").First(&article).Error)
	assert.Equal(t, "Penelitian ini membahas watermarking citra digital.", article.Abstract)

	// Zweiter Lauf findet nichts Offenes mehr.
	run, err = svc.RunAbstracts(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, 0, run.ItemsScraped)
}

func TestRunSubjects(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	seedLecturer(t, db, "Ajib Susanto", "https://sinta.test/authors/profile/1")

	profilePage := `<html><body>
	<div class="profile-subject mt-3">
	  <a href="#">Computer Vision</a>
	</div>
	</body></html>`

	pages := &fakePages{pages: map[string]string{
		"https://sinta.test/authors/profile/1": profilePage,
	}}
	svc := NewCrawlService(cfg, db, zap.NewNop(), nil, nil, pages)

	run, err := svc.RunSubjects(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, models.CrawlRunSuccess, run.Status)
	assert.Equal(t, 1, run.ItemsScraped)

	var subjectCount int64
	db.Model(&models.Subject{}).Count(&subjectCount)
	assert.Equal(t, int64(1), subjectCount)
}
