package database

import (
	"comptabilite/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a pooled GORM connection and migrates the
// schema. TranslateError is on so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of the engine.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema for the core models. Shared with tests,
// which open their own in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Personnel{}, "Sections", &model.PersonnelSection{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Section{},
		&model.Personnel{},
		&model.AuditLog{},
	)
}
