package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4280"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// SINTA-Quellen
	SintaBaseURL  string `envconfig:"SINTA_BASE_URL" default:"https://sinta.kemdikbud.go.id"`
	DepartmentURL string `envconfig:"DEPARTMENT_URL" required:"true"`

	// Crawl-Verhalten: feste Wartezeit nach jedem Request ist die einzige
	// Rate-Limitierung, Timeouts sind überall gesetzt.
	FetchDelay        time.Duration `envconfig:"FETCH_DELAY" default:"1s"`
	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	DirectoryMaxPages int           `envconfig:"DIRECTORY_MAX_PAGES" default:"7"`
	ListingMaxPages   int           `envconfig:"LISTING_MAX_PAGES" default:"20"`
	SyncItemLimit     int           `envconfig:"SYNC_ITEM_LIMIT" default:"5"`

	// ARTICLE_DEDUP_MODE: title_source (kanonisch), title, title_doi
	ArticleDedupMode string `envconfig:"ARTICLE_DEDUP_MODE" default:"title_source"`

	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"garuda,scholar,scopus,researches"`
	CronSchedule     string `envconfig:"CRON_SCHEDULE" default:"0 2 * * *"`

	// Scopus über Headless-Browser statt plain HTTP (Bot-Erkennung)
	ScopusUseBrowser bool `envconfig:"SCOPUS_USE_BROWSER" default:"false"`

	// Optionale Roh-HTML-Snapshots nach S3 (Layout-Drift-Forensik)
	SnapshotEnabled  bool   `envconfig:"SNAPSHOT_ENABLED" default:"false"`
	SnapshotS3Key    string `envconfig:"SNAPSHOT_S3_KEY"`
	SnapshotS3Secret string `envconfig:"SNAPSHOT_S3_SECRET"`
	SnapshotS3URL    string `envconfig:"SNAPSHOT_S3_URL"`
	SnapshotS3Region string `envconfig:"SNAPSHOT_S3_REGION"`
	SnapshotS3Bucket string `envconfig:"SNAPSHOT_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
