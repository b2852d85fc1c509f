package models

import "time"

// Status-Werte für CrawlRun.
const (
	CrawlRunRunning = "running"
	CrawlRunSuccess = "success"
	CrawlRunFailed  = "failed"
)

// CrawlRun protokolliert einen Scrape-Durchlauf. Wichtig ist die Trennung
// von FetchErrors und leeren Seiten: beide beenden die Pagination, aber nur
// eines davon ist ein Fehler.
type CrawlRun struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Source        string `json:"source" gorm:"index;not null"`
	TriggerSource string `json:"trigger_source"` // api, cron
	Status        string `json:"status" gorm:"index;default:'running'"`
	ErrorMessage  string `json:"error_message,omitempty" gorm:"type:text"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	ProfilesProcessed int `json:"profiles_processed"`
	PagesFetched      int `json:"pages_fetched"`
	FetchErrors       int `json:"fetch_errors"`
	ItemsScraped      int `json:"items_scraped"`
	Inserted          int `json:"inserted"`
	Skipped           int `json:"skipped"`
}

// TableName gibt explizit den Tabellennamen an.
func (CrawlRun) TableName() string {
	return "crawl_runs"
}
