package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/authorlist"
	"sinta-collector/providers/garuda"
	"sinta-collector/providers/sintaweb"
)

// CrawlService orchestriert die Scrape-Durchläufe: Verzeichnis zuerst,
// danach pro Dozentin die Listing-Provider. Jeder Durchlauf hinterlässt
// eine CrawlRun-Zeile mit Zählern und Stop-Grund.
type CrawlService struct {
	Config     *config.Config
	DB         *gorm.DB
	Logger     *zap.Logger
	Reconciler *Reconciler
	Providers  []providers.Provider
	Directory  *authorlist.Fetcher
	Pages      sintaweb.PageSource
}

// NewCrawlService erstellt eine neue Instanz des CrawlService.
func NewCrawlService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provs []providers.Provider, directory *authorlist.Fetcher, pages sintaweb.PageSource) *CrawlService {
	return &CrawlService{
		Config:     cfg,
		DB:         db,
		Logger:     logger,
		Reconciler: NewReconciler(db, logger, cfg.ArticleDedupMode),
		Providers:  provs,
		Directory:  directory,
		Pages:      pages,
	}
}

// provider sucht einen registrierten Provider über seinen Namen.
func (c *CrawlService) provider(name string) providers.Provider {
	for _, p := range c.Providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// lecturers liefert alle Dozentinnen mit bekanntem SINTA-Profil in
// Speicher-Reihenfolge.
func (c *CrawlService) lecturers() ([]models.Author, error) {
	var authors []models.Author
	err := c.DB.Preload("User").
		Where("sinta_profile_url <> ''").
		Order("id asc").
		Find(&authors).Error
	return authors, err
}

// startRun legt die CrawlRun-Zeile für einen Durchlauf an.
func (c *CrawlService) startRun(source, trigger string) *models.CrawlRun {
	run := &models.CrawlRun{
		Source:        source,
		TriggerSource: trigger,
		Status:        models.CrawlRunRunning,
		StartedAt:     time.Now(),
	}
	if err := c.DB.Create(run).Error; err != nil {
		c.Logger.Error("CrawlRun nicht anlegbar", zap.Error(err))
	}
	return run
}

// finishRun schreibt Status und Zähler zurück.
func (c *CrawlService) finishRun(run *models.CrawlRun, runErr error) {
	now := time.Now()
	run.FinishedAt = &now
	if runErr != nil {
		run.Status = models.CrawlRunFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = models.CrawlRunSuccess
	}
	if err := c.DB.Save(run).Error; err != nil {
		c.Logger.Error("CrawlRun nicht speicherbar", zap.Error(err))
	}
}

// RunDirectory scrapt das Autoren-Verzeichnis des Departments und legt
// User/Author-Zeilen an bzw. aktualisiert die Profilfelder.
func (c *CrawlService) RunDirectory(ctx context.Context, trigger string) (*models.CrawlRun, error) {
	run := c.startRun("directory", trigger)

	records, stats, err := c.Directory.Scrape(ctx)
	run.PagesFetched = stats.PagesFetched
	run.FetchErrors = stats.FetchErrors
	run.ItemsScraped = len(records)

	if err == nil {
		var upserted int
		upserted, err = c.Reconciler.UpsertDirectory(records, c.departmentLabel())
		run.ProfilesProcessed = upserted
		run.Inserted = upserted
	}

	c.finishRun(run, err)
	return run, err
}

// RunArticles scrapt Publikationen einer Quelle für alle Dozentinnen.
// limit > 0 schneidet die Ergebnisse pro Profil ab (synchrone API-Trigger).
func (c *CrawlService) RunArticles(ctx context.Context, source, trigger string, limit int) (*models.CrawlRun, error) {
	prov := c.provider(source)
	if prov == nil {
		return nil, fmt.Errorf("unbekannter Provider: %s", source)
	}

	run := c.startRun(source, trigger)
	authors, err := c.lecturers()
	if err != nil {
		c.finishRun(run, err)
		return run, err
	}

	for _, author := range authors {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		profile := profileFor(author)

		res, serr := prov.Scrape(ctx, profile)
		if serr != nil {
			c.Logger.Warn("Scrape fehlgeschlagen",
				zap.String("lecturer", profile.LecturerName), zap.Error(serr))
			continue
		}
		run.ProfilesProcessed++
		run.PagesFetched += res.Stats.PagesFetched
		run.FetchErrors += res.Stats.FetchErrors

		papers := res.Papers
		if limit > 0 && len(papers) > limit {
			papers = papers[:limit]
		}
		run.ItemsScraped += len(papers)

		inserted, skipped, rerr := c.Reconciler.ReconcilePapers(profile.LecturerName, papers)
		run.Inserted += inserted
		run.Skipped += skipped
		if rerr != nil {
			// Ein kaputtes Profil darf die übrigen nicht mitreißen.
			c.Logger.Error("Reconcile fehlgeschlagen",
				zap.String("lecturer", profile.LecturerName), zap.Error(rerr))
			run.ErrorMessage = rerr.Error()
			continue
		}
	}

	c.finishRun(run, err)
	return run, err
}

// RunResearches scrapt Forschungsprojekte für alle Dozentinnen.
func (c *CrawlService) RunResearches(ctx context.Context, trigger string, limit int) (*models.CrawlRun, error) {
	prov := c.provider("researches")
	if prov == nil {
		return nil, fmt.Errorf("researches-Provider nicht registriert")
	}

	run := c.startRun("researches", trigger)
	authors, err := c.lecturers()
	if err != nil {
		c.finishRun(run, err)
		return run, err
	}

	for _, author := range authors {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}
		profile := profileFor(author)

		res, serr := prov.Scrape(ctx, profile)
		if serr != nil {
			c.Logger.Warn("Scrape fehlgeschlagen",
				zap.String("lecturer", profile.LecturerName), zap.Error(serr))
			continue
		}
		run.ProfilesProcessed++
		run.PagesFetched += res.Stats.PagesFetched
		run.FetchErrors += res.Stats.FetchErrors

		grants := res.Grants
		if limit > 0 && len(grants) > limit {
			grants = grants[:limit]
		}
		run.ItemsScraped += len(grants)

		inserted, skipped, rerr := c.Reconciler.ReconcileGrants(grants)
		run.Inserted += inserted
		run.Skipped += skipped
		if rerr != nil {
			c.Logger.Error("Reconcile fehlgeschlagen",
				zap.String("lecturer", profile.LecturerName), zap.Error(rerr))
			run.ErrorMessage = rerr.Error()
			continue
		}
	}

	c.finishRun(run, err)
	return run, err
}

// RunSubjects besucht die Profilseite jeder Dozentin und verknüpft die
// dort gelisteten Fachgebiete.
func (c *CrawlService) RunSubjects(ctx context.Context, trigger string) (*models.CrawlRun, error) {
	run := c.startRun("subjects", trigger)
	authors, err := c.lecturers()
	if err != nil {
		c.finishRun(run, err)
		return run, err
	}

	for _, author := range authors {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		doc, ferr := c.Pages.GetPage(ctx, author.SintaProfileURL)
		if ferr != nil {
			run.FetchErrors++
			c.Logger.Warn("Profilseite fehlgeschlagen",
				zap.String("url", author.SintaProfileURL), zap.Error(ferr))
			continue
		}
		run.PagesFetched++
		run.ProfilesProcessed++

		names := sintaweb.ExtractSubjects(doc)
		run.ItemsScraped += len(names)
		c.Reconciler.ApplySubjects(author.ID, names)
	}

	c.finishRun(run, err)
	return run, err
}

// RunAbstracts reicht Abstracts für Garuda-Artikel nach, deren
// Detailseite noch nicht besucht wurde. Ein nicht erreichbarer Artikel
// wird gezählt und übersprungen.
func (c *CrawlService) RunAbstracts(ctx context.Context, trigger string) (*models.CrawlRun, error) {
	run := c.startRun("abstracts", trigger)

	var articles []models.Article
	err := c.DB.Where("source = ? AND abstract = '' AND article_url <> ''", models.SourceGaruda).
		Order("id asc").
		Find(&articles).Error
	if err != nil {
		c.finishRun(run, err)
		return run, err
	}
	run.ItemsScraped = len(articles)

	for _, article := range articles {
		if ctx.Err() != nil {
			err = ctx.Err()
			break
		}

		doc, ferr := c.Pages.GetPage(ctx, article.ArticleURL)
		if ferr != nil {
			run.FetchErrors++
			run.Skipped++
			c.Logger.Warn("Artikelseite fehlgeschlagen",
				zap.String("url", article.ArticleURL), zap.Error(ferr))
			continue
		}
		run.PagesFetched++

		abstract := garuda.ExtractAbstract(doc)
		if abstract == "" {
			run.Skipped++
			continue
		}
		if uerr := c.DB.Model(&models.Article{}).Where("id = ?", article.ID).
			Update("abstract", abstract).Error; uerr != nil {
			run.Skipped++
			c.Logger.Warn("Abstract nicht speicherbar",
				zap.Uint("article_id", article.ID), zap.Error(uerr))
			continue
		}
		run.Inserted++
	}

	c.finishRun(run, err)
	return run, err
}

// RunAll fährt einen kompletten Durchlauf: Verzeichnis, dann alle
// aktivierten Provider. Fehler einzelner Quellen brechen die übrigen nicht
// ab.
func (c *CrawlService) RunAll(ctx context.Context, trigger string) []*models.CrawlRun {
	var runs []*models.CrawlRun

	if run, err := c.RunDirectory(ctx, trigger); run != nil {
		runs = append(runs, run)
		if err != nil {
			c.Logger.Error("Verzeichnis-Durchlauf fehlgeschlagen", zap.Error(err))
		}
	}

	if run, err := c.RunSubjects(ctx, trigger); run != nil {
		runs = append(runs, run)
		if err != nil {
			c.Logger.Error("Fachgebiets-Durchlauf fehlgeschlagen", zap.Error(err))
		}
	}

	for _, name := range strings.Split(c.Config.EnabledProviders, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var (
			run *models.CrawlRun
			err error
		)
		if name == "researches" {
			run, err = c.RunResearches(ctx, trigger, 0)
		} else {
			run, err = c.RunArticles(ctx, name, trigger, 0)
		}
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			c.Logger.Error("Durchlauf fehlgeschlagen", zap.String("source", name), zap.Error(err))
		}
	}

	if strings.Contains(c.Config.EnabledProviders, "garuda") {
		if run, err := c.RunAbstracts(ctx, trigger); run != nil {
			runs = append(runs, run)
			if err != nil {
				c.Logger.Error("Abstract-Durchlauf fehlgeschlagen", zap.Error(err))
			}
		}
	}

	return runs
}

// departmentLabel leitet ein lesbares Department-Label aus der URL ab.
func (c *CrawlService) departmentLabel() string {
	u := c.Config.DepartmentURL
	if idx := strings.Index(u, "?"); idx >= 0 {
		u = u[:idx]
	}
	u = strings.TrimRight(u, "/")
	if idx := strings.LastIndex(u, "/"); idx >= 0 {
		return u[idx+1:]
	}
	return u
}

func profileFor(author models.Author) providers.Profile {
	name := ""
	if author.User != nil {
		name = author.User.Name
	}
	return providers.Profile{
		LecturerName: name,
		SintaID:      author.SintaID,
		ProfileURL:   author.SintaProfileURL,
	}
}
