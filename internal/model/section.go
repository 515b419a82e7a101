package model

import (
	"time"
)

// Section is an organizational unit personnel can be assigned to
type Section struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Label     string    `gorm:"type:varchar(255);not null" json:"label"`
	Unit      string    `gorm:"type:varchar(255);not null" json:"unit"`
	Type      string    `gorm:"type:varchar(100);not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
