package models

import (
	"time"

	"gorm.io/datatypes"
)

// Author trägt die SINTA-Profildaten eines Users. Die Scores bleiben
// bewusst Strings: die Quelle liefert sie als Freitext und nicht jede
// Revision der Profilseite ist numerisch sauber.
type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	SintaID         string `json:"sinta_id" gorm:"index"`
	SintaProfileURL string `json:"sinta_profile_url" gorm:"type:text"`

	SintaScore3Yr   string `json:"sinta_score_3yr" gorm:"column:sinta_score_3yr"`
	SintaScoreTotal string `json:"sinta_score_total" gorm:"column:sinta_score_total"`
	AffilScore3Yr   string `json:"affil_score_3yr" gorm:"column:affil_score_3yr"`
	AffilScoreTotal string `json:"affil_score_total" gorm:"column:affil_score_total"`

	Subject    string         `json:"subject,omitempty"`
	Department string         `json:"department,omitempty" gorm:"index"`
	RawProfile datatypes.JSON `json:"raw_profile,omitempty" gorm:"type:jsonb"`

	User         *User              `json:"user,omitempty"`
	Publications []PublicationAuthor `json:"publications,omitempty"`
	Researches   []ResearcherAuthor  `json:"researches,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Author) TableName() string {
	return "authors"
}
