package models

// PublicationAuthor verbindet Author und Article. Das Unique-Constraint auf
// (article_id, author_id) fängt doppelte Verknüpfungen auf der relationalen
// Ebene ab; der Reconciler schluckt die Verletzung und macht weiter.
type PublicationAuthor struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ArticleID uint `json:"article_id" gorm:"uniqueIndex:idx_publication_author;not null"`
	AuthorID  uint `json:"author_id" gorm:"uniqueIndex:idx_publication_author;not null"`

	// AuthorOrder ist nullable: nicht jede Quelle liefert oder erlaubt eine
	// Herleitung der Position.
	AuthorOrder *int `json:"author_order"`

	Article *Article `json:"article,omitempty"`
	Author  *Author  `json:"author,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (PublicationAuthor) TableName() string {
	return "publication_authors"
}
