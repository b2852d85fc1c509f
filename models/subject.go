package models

// Subject ist ein Fachgebiets-Tag von der Profilseite.
type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (Subject) TableName() string {
	return "subjects"
}

// UserSubject verbindet Author und Subject, eindeutig pro Paar.
type UserSubject struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AuthorID  uint `json:"author_id" gorm:"uniqueIndex:idx_user_subject;not null"`
	SubjectID uint `json:"subject_id" gorm:"uniqueIndex:idx_user_subject;not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (UserSubject) TableName() string {
	return "user_subjects"
}
