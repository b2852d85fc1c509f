package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sinta-collector/config"
	"sinta-collector/models"
	"sinta-collector/providers"
	"sinta-collector/providers/authorlist"
	"sinta-collector/providers/garuda"
	"sinta-collector/providers/researches"
	"sinta-collector/providers/scholar"
	"sinta-collector/providers/scopus"
	"sinta-collector/providers/sintaweb"
	"sinta-collector/services"
	"sinta-collector/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	pagesFetchedCounter     prometheus.Counter
	fetchErrorsCounter      prometheus.Counter
	articlesInsertedCounter prometheus.Counter
	grantsInsertedCounter   prometheus.Counter
)

func init() {
	pagesFetchedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pages_fetched_total",
			Help: "Total number of listing pages fetched from the source.",
		},
	)
	fetchErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_errors_total",
			Help: "Total number of failed page fetches.",
		},
	)
	articlesInsertedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_inserted_total",
			Help: "Total number of new articles inserted into the database.",
		},
	)
	grantsInsertedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grants_inserted_total",
			Help: "Total number of new research grants inserted into the database.",
		},
	)
	prometheus.MustRegister(pagesFetchedCounter, fetchErrorsCounter, articlesInsertedCounter, grantsInsertedCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// recordRun spiegelt die Zähler eines Durchlaufs in die Prometheus-Metriken.
func recordRun(run *models.CrawlRun) {
	if run == nil {
		return
	}
	pagesFetchedCounter.Add(float64(run.PagesFetched))
	fetchErrorsCounter.Add(float64(run.FetchErrors))
	switch run.Source {
	case "researches":
		grantsInsertedCounter.Add(float64(run.Inserted))
	case "directory", "subjects", "abstracts":
		// keine Artikel-Metrik
	default:
		articlesInsertedCounter.Add(float64(run.Inserted))
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.User{},
		&models.Author{},
		&models.Article{},
		&models.PublicationAuthor{},
		&models.Research{},
		&models.ResearcherAuthor{},
		&models.Subject{},
		&models.UserSubject{},
		&models.Keyword{},
		&models.ArticleKeyword{},
		&models.CrawlRun{},
	)

	// Setup Page Fetcher
	pages := sintaweb.NewPageFetcher(cfg, logging)
	if cfg.SnapshotEnabled {
		s3Client, serr := storage.NewS3Client(cfg)
		if serr != nil {
			logging.Fatal("S3 client creation failed", zap.Error(serr))
		}
		pages.WithSnapshots(storage.NewSnapshotStore(s3Client, cfg))
		logging.Info("HTML snapshots enabled", zap.String("bucket", cfg.SnapshotS3Bucket))
	}

	// Scopus rendert teilweise clientseitig; optional über Headless-Browser.
	var scopusPages sintaweb.PageSource = pages
	if cfg.ScopusUseBrowser {
		scopusPages = sintaweb.NewBrowserFetcher(logging, cfg.FetchDelay)
		logging.Info("Scopus uses headless browser fetcher")
	}

	// Setup Providers
	enabledProviderNames := strings.Split(cfg.EnabledProviders, ",")
	var enabledProviders []providers.Provider
	for _, name := range enabledProviderNames {
		switch strings.TrimSpace(name) {
		case "garuda":
			enabledProviders = append(enabledProviders, garuda.NewFetcher(cfg, logging, pages))
		case "scholar":
			enabledProviders = append(enabledProviders, scholar.NewFetcher(cfg, logging, pages))
		case "scopus":
			enabledProviders = append(enabledProviders, scopus.NewFetcher(cfg, logging, scopusPages))
		case "researches":
			enabledProviders = append(enabledProviders, researches.NewFetcher(cfg, logging, pages))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabledProviders) == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	logging.Info("Active providers loaded", zap.Strings("providers", enabledProviderNames))

	// Setup Services
	directory := authorlist.NewFetcher(cfg, logging, pages)
	crawlService := services.NewCrawlService(cfg, db, logging, enabledProviders, directory, pages)
	importService := services.NewImportService(db, logging, crawlService.Reconciler)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	api := router.Group("/api")
	setupCrawlRoutes(api, cfg, crawlService, logging)
	setupArticleRoutes(api, db, logging)
	setupResearchRoutes(api, db, logging)
	setupAuthorRoutes(api, db, logging)
	setupStatsRoutes(api, db, logging)
	setupCrawlRunRoutes(api, db, logging)
	setupImportRoutes(api, importService, logging)
	setupAdminRoutes(api, db, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled crawl job...")
		runs := crawlService.RunAll(context.Background(), "cron")
		for _, run := range runs {
			recordRun(run)
		}
		logging.Info("Cron job completed", zap.Int("runs", len(runs)))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// articleSources, die über die Crawl-Routen angestoßen werden dürfen.
var articleSources = map[string]bool{
	"garuda":  true,
	"scholar": true,
	"scopus":  true,
}

func setupCrawlRoutes(router *gin.RouterGroup, cfg *config.Config, svc *services.CrawlService, log *zap.Logger) {
	rg := router.Group("/crawl")

	// Asynchrone Trigger: 202 sofort, der Durchlauf läuft im Hintergrund.
	rg.POST("/directory", func(c *gin.Context) {
		go func() {
			run, err := svc.RunDirectory(context.Background(), "api")
			recordRun(run)
			if err != nil {
				log.Error("Background directory crawl failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Directory crawl started in background."})
	})

	rg.POST("/articles/:source", func(c *gin.Context) {
		source := c.Param("source")
		if !articleSources[source] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source: " + source})
			return
		}
		go func() {
			run, err := svc.RunArticles(context.Background(), source, "api", 0)
			recordRun(run)
			if err != nil {
				log.Error("Background article crawl failed", zap.String("source", source), zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Article crawl started in background.", "source": source})
	})

	rg.POST("/researches", func(c *gin.Context) {
		go func() {
			run, err := svc.RunResearches(context.Background(), "api", 0)
			recordRun(run)
			if err != nil {
				log.Error("Background research crawl failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Research crawl started in background."})
	})

	rg.POST("/subjects", func(c *gin.Context) {
		go func() {
			run, err := svc.RunSubjects(context.Background(), "api")
			recordRun(run)
			if err != nil {
				log.Error("Background subject crawl failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Subject crawl started in background."})
	})

	rg.POST("/abstracts", func(c *gin.Context) {
		go func() {
			run, err := svc.RunAbstracts(context.Background(), "api")
			recordRun(run)
			if err != nil {
				log.Error("Background abstract crawl failed", zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Abstract crawl started in background."})
	})

	rg.POST("/all", func(c *gin.Context) {
		go func() {
			runs := svc.RunAll(context.Background(), "api")
			for _, run := range runs {
				recordRun(run)
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Full crawl started in background."})
	})

	// Synchroner Trigger mit Item-Limit pro Profil, für schnelle Checks.
	rg.POST("/sync/articles/:source", func(c *gin.Context) {
		source := c.Param("source")
		if !articleSources[source] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source: " + source})
			return
		}
		run, err := svc.RunArticles(c.Request.Context(), source, "api", cfg.SyncItemLimit)
		recordRun(run)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
			return
		}
		c.JSON(http.StatusOK, run)
	})

	rg.POST("/sync/researches", func(c *gin.Context) {
		run, err := svc.RunResearches(c.Request.Context(), "api", cfg.SyncItemLimit)
		recordRun(run)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run})
			return
		}
		c.JSON(http.StatusOK, run)
	})
}

// pagination liest page/limit aus der Query, mit vernünftigen Grenzen.
func pagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}
	return (page - 1) * limit, limit
}

func setupArticleRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/articles")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Article{})

		if source := c.Query("source"); source != "" {
			query = query.Where("source = ?", strings.ToUpper(source))
		}
		if year := c.Query("year"); year != "" {
			query = query.Where("year = ?", year)
		}
		if q := c.Query("q"); q != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		if authorID := c.Query("author_id"); authorID != "" {
			query = query.Joins("JOIN publication_authors pa ON pa.article_id = articles.id").
				Where("pa.author_id = ?", authorID)
		}

		sort := "created_at desc"
		switch c.Query("sort") {
		case "year":
			sort = "year desc"
		case "citations":
			sort = "citation_count desc"
		case "title":
			sort = "title asc"
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("Database count for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		offset, limit := pagination(c)
		var articles []models.Article
		if err := query.Order(sort).Offset(offset).Limit(limit).Find(&articles).Error; err != nil {
			log.Error("Database query for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"total": total, "data": articles})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var article models.Article
		err := db.Preload("Authors", func(db *gorm.DB) *gorm.DB {
			return db.Order("author_order asc")
		}).
			Preload("Authors.Author.User").
			Preload("Keywords.Keyword").
			First(&article, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		if err != nil {
			log.Error("Database query for article failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})
}

func setupResearchRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/researches")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Research{})

		if year := c.Query("year"); year != "" {
			query = query.Where("year = ?", year)
		}
		if fundSource := c.Query("fund_source"); fundSource != "" {
			query = query.Where("fund_source = ?", fundSource)
		}
		if q := c.Query("q"); q != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("Database count for researches failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		offset, limit := pagination(c)
		var items []models.Research
		if err := query.Order("year desc, id desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
			log.Error("Database query for researches failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"total": total, "data": items})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var research models.Research
		err := db.Preload("Authors.Author.User").First(&research, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "research not found"})
			return
		}
		if err != nil {
			log.Error("Database query for research failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, research)
	})
}

func setupAuthorRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/authors")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.User{}).Preload("Author")

		if q := c.Query("q"); q != "" {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("Database count for authors failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		offset, limit := pagination(c)
		var users []models.User
		if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
			log.Error("Database query for authors failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"total": total, "data": users})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var user models.User
		err := db.Preload("Author").First(&user, c.Param("id")).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "author not found"})
			return
		}
		if err != nil {
			log.Error("Database query for author failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// Publikations- und Projektzahlen zum Profil dazugeben
		var publicationCount, researchCount int64
		if user.Author != nil {
			db.Model(&models.PublicationAuthor{}).Where("author_id = ?", user.Author.ID).Count(&publicationCount)
			db.Model(&models.ResearcherAuthor{}).Where("author_id = ?", user.Author.ID).Count(&researchCount)
		}

		c.JSON(http.StatusOK, gin.H{
			"user":              user,
			"publication_count": publicationCount,
			"research_count":    researchCount,
		})
	})

	rg.GET("/:id/articles", func(c *gin.Context) {
		var author models.Author
		err := db.Where("user_id = ?", c.Param("id")).First(&author).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "author not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		offset, limit := pagination(c)
		var articles []models.Article
		if err := db.Joins("JOIN publication_authors pa ON pa.article_id = articles.id").
			Where("pa.author_id = ?", author.ID).
			Order("year desc, articles.id desc").
			Offset(offset).Limit(limit).
			Find(&articles).Error; err != nil {
			log.Error("Database query for author articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, articles)
	})
}

func setupStatsRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/stats")

	rg.GET("/summary", func(c *gin.Context) {
		var userCount, articleCount, researchCount int64
		db.Model(&models.User{}).Count(&userCount)
		db.Model(&models.Article{}).Count(&articleCount)
		db.Model(&models.Research{}).Count(&researchCount)

		type sourceCount struct {
			Source string `json:"source"`
			Count  int64  `json:"count"`
		}
		var bySource []sourceCount
		if err := db.Model(&models.Article{}).
			Select("source, count(*) as count").
			Group("source").
			Scan(&bySource).Error; err != nil {
			log.Error("Database query for source stats failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var totalCitations int64
		db.Model(&models.Article{}).Select("COALESCE(SUM(citation_count), 0)").Scan(&totalCitations)

		var totalFund float64
		db.Model(&models.Research{}).Select("COALESCE(SUM(fund), 0)").Scan(&totalFund)

		c.JSON(http.StatusOK, gin.H{
			"users":              userCount,
			"articles":           articleCount,
			"researches":         researchCount,
			"articles_by_source": bySource,
			"total_citations":    totalCitations,
			"total_fund":         totalFund,
		})
	})
}

func setupCrawlRunRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/crawl-runs")

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.CrawlRun{})
		if source := c.Query("source"); source != "" {
			query = query.Where("source = ?", source)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		offset, limit := pagination(c)
		var runs []models.CrawlRun
		if err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
			log.Error("Database query for crawl runs failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})
}

func setupImportRoutes(router *gin.RouterGroup, svc *services.ImportService, log *zap.Logger) {
	rg := router.Group("/import")

	rg.POST("/csv", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
			return
		}
		defer file.Close()

		summary, err := svc.ImportCSV(file)
		if err != nil {
			log.Error("CSV import failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

func setupAdminRoutes(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/admin")

	// Kompletter Daten-Reset in FK-Reihenfolge. Bewusst destruktiv,
	// deshalb nur hinter dem API-Key erreichbar.
	rg.DELETE("/reset", func(c *gin.Context) {
		tables := []any{
			&models.ArticleKeyword{},
			&models.Keyword{},
			&models.PublicationAuthor{},
			&models.Article{},
			&models.ResearcherAuthor{},
			&models.Research{},
			&models.UserSubject{},
			&models.Subject{},
			&models.Author{},
			&models.User{},
			&models.CrawlRun{},
		}
		for _, table := range tables {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				log.Error("Reset failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
				return
			}
		}
		log.Warn("All data has been reset via API")
		c.JSON(http.StatusOK, gin.H{"message": "all data deleted"})
	})
}
