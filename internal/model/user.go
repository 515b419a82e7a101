package model

import (
	"time"
)

// Known roles. The set is closed: a token carrying anything else is
// rejected before it reaches a handler.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ValidRole reports whether role belongs to the known role set.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}

// User represents an account able to authenticate against the API
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Firstname string    `gorm:"type:varchar(255);not null" json:"firstname"`
	Lastname  string    `gorm:"type:varchar(255);not null" json:"lastname"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role      string    `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
