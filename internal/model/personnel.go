package model

import (
	"time"
)

// Personnel is a staff member tracked by the system. Matricule is the
// natural key and stays unique across all rows.
type Personnel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Matricule     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"matricule"`
	Nom           string    `gorm:"type:varchar(255);not null" json:"nom"`
	Qualification string    `gorm:"type:varchar(255);not null" json:"qualification"`
	Affectation   string    `gorm:"type:varchar(255);not null" json:"affectation"`
	Sections      []Section `gorm:"many2many:personnel_sections;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PersonnelSection is the join row linking a personnel to a section.
// Composite primary key, no surrogate id: a row's existence means
// "this personnel is assigned to this section".
type PersonnelSection struct {
	PersonnelID uint `gorm:"primaryKey" json:"personnel_id"`
	SectionID   uint `gorm:"primaryKey" json:"section_id"`
}

// TableName keeps the join table shared with the many2many tag above.
func (PersonnelSection) TableName() string { return "personnel_sections" }
