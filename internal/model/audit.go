package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreatePersonnel = "CREATE_PERSONNEL"
	ActionUpdatePersonnel = "UPDATE_PERSONNEL"
	ActionDeletePersonnel = "DELETE_PERSONNEL"
	ActionCreateSection   = "CREATE_SECTION"
	ActionUpdateSection   = "UPDATE_SECTION"
	ActionDeleteSection   = "DELETE_SECTION"
	ActionUpdateUser      = "UPDATE_USER"
	ActionDeleteUser      = "DELETE_USER"
)

// AuditLog tracks who did what and when for privileged writes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"` // nil when the actor is unknown
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the id in Go so the model works on engines without
// a native uuid generator.
func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
