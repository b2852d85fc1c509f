package models

import "time"

// Quellen-Tags für Article.Source.
const (
	SourceGaruda  = "GARUDA"
	SourceScholar = "GOOGLE_SCHOLAR"
	SourceScopus  = "SCOPUS"
	SourceImport  = "IMPORT"
)

// Article ist ein Publikationsdatensatz. Dedup-Schlüssel ist kanonisch
// (title, source); die historischen Varianten (nur Titel, Titel-oder-DOI)
// sind im Reconciler als Konfiguration wählbar.
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title  string `json:"title" gorm:"size:512;not null;uniqueIndex:idx_articles_title_source"`
	Source string `json:"source" gorm:"index;uniqueIndex:idx_articles_title_source"`

	Year          *int    `json:"year"`
	DOI           *string `json:"doi,omitempty" gorm:"column:doi;index"`
	Accred        string  `json:"accred,omitempty"`
	Abstract      string  `json:"abstract,omitempty" gorm:"type:text"`
	CitationCount *int    `json:"citation_count"`
	ArticleURL    string  `json:"article_url,omitempty" gorm:"type:text"`
	Journal       string  `json:"journal,omitempty"`
	University    string  `json:"university,omitempty"`

	Authors  []PublicationAuthor `json:"authors,omitempty"`
	Keywords []ArticleKeyword    `json:"keywords,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "articles"
}
