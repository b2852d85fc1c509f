package models

import "time"

// Research ist ein gefördertes Forschungsprojekt. Dedup-Schlüssel ist der
// Titel (lose, aber die Quelle liefert keinen stärkeren Schlüssel).
type Research struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title      string   `json:"title" gorm:"size:512;uniqueIndex;not null"`
	Fund       *float64 `json:"fund"`
	FundSource string   `json:"fund_source,omitempty" gorm:"index"`
	FundStatus string   `json:"fund_status,omitempty"`
	FundType   string   `json:"fund_type,omitempty"`
	Year       *int     `json:"year"`
	LeaderName string   `json:"leader_name,omitempty"`

	Authors []ResearcherAuthor `json:"authors,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Research) TableName() string {
	return "researches"
}
