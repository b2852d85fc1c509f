package models

import "time"

// User ist der Identitätsanker: wird beim ersten Auftauchen eines Namens
// angelegt, egal aus welcher Quelle. Der Name ist der einzige Schlüssel,
// den alle Quellen gemeinsam haben.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `json:"name" gorm:"uniqueIndex;not null"`
	// NPP: Personalnummer der Hochschule, kommt nur über den Bulk-Import
	NPP string `json:"npp,omitempty" gorm:"column:npp;index"`

	Author *Author `json:"author,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "users"
}
