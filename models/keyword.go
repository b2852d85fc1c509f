package models

// Keyword ist ein Artikel-Schlagwort. Die Scraper liefern keine Keywords;
// befüllt wird die Tabelle nur über die keywords-Spalte des Bulk-Imports.
type Keyword struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Keyword string `json:"keyword" gorm:"uniqueIndex;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Keyword) TableName() string {
	return "keywords"
}

// ArticleKeyword verbindet Article und Keyword, eindeutig pro Paar.
type ArticleKeyword struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ArticleID uint `json:"article_id" gorm:"uniqueIndex:idx_article_keyword;not null"`
	KeywordID uint `json:"keyword_id" gorm:"uniqueIndex:idx_article_keyword;not null"`

	Article *Article `json:"article,omitempty"`
	Keyword *Keyword `json:"keyword,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (ArticleKeyword) TableName() string {
	return "article_keywords"
}
