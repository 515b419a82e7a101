package repository

import (
	"context"

	"comptabilite/internal/model"

	"gorm.io/gorm"
)

// SectionRepository defines the interface for data access of Section entities
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id uint) (*model.Section, error)
	List(ctx context.Context) ([]model.Section, error)
	ListByLabel(ctx context.Context) ([]model.Section, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id uint) error
}

type sectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository returns a new instance of SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) Create(ctx context.Context, section *model.Section) error {
	return GetDB(ctx, r.db).Create(section).Error
}

func (r *sectionRepository) GetByID(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	if err := GetDB(ctx, r.db).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepository) List(ctx context.Context) ([]model.Section, error) {
	var sections []model.Section
	if err := GetDB(ctx, r.db).Order("id desc").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// ListByLabel returns sections alphabetically, for picker views.
func (r *sectionRepository) ListByLabel(ctx context.Context) ([]model.Section, error) {
	var sections []model.Section
	if err := GetDB(ctx, r.db).Order("label asc").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *sectionRepository) Update(ctx context.Context, section *model.Section) error {
	return GetDB(ctx, r.db).Save(section).Error
}

func (r *sectionRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.Section{}, id).Error
}
