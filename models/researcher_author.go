package models

// ResearcherAuthor verbindet Author und Research, eindeutig pro
// (research_id, author_id). IsLeader markiert den Projektleiter, hergeleitet
// aus dem "Leader : <name>"-Feld der Quelle.
type ResearcherAuthor struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ResearchID uint `json:"research_id" gorm:"uniqueIndex:idx_researcher_author;not null"`
	AuthorID   uint `json:"author_id" gorm:"uniqueIndex:idx_researcher_author;not null"`

	IsLeader bool `json:"is_leader" gorm:"default:false"`

	Research *Research `json:"research,omitempty"`
	Author   *Author   `json:"author,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (ResearcherAuthor) TableName() string {
	return "researchers_authors"
}
