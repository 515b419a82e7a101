package repository

import (
	"context"

	"comptabilite/internal/model"

	"gorm.io/gorm"
)

// PersonnelRepository defines the interface for data access of Personnel entities
type PersonnelRepository interface {
	Create(ctx context.Context, personnel *model.Personnel) error
	GetByID(ctx context.Context, id uint) (*model.Personnel, error)
	List(ctx context.Context) ([]model.Personnel, error)
	MatriculeTaken(ctx context.Context, matricule string, excludeID uint) (bool, error)
	Update(ctx context.Context, personnel *model.Personnel) error
	Delete(ctx context.Context, id uint) error
}

type personnelRepository struct {
	db *gorm.DB
}

// NewPersonnelRepository returns a new instance of PersonnelRepository
func NewPersonnelRepository(db *gorm.DB) PersonnelRepository {
	return &personnelRepository{db: db}
}

func (r *personnelRepository) Create(ctx context.Context, personnel *model.Personnel) error {
	// Sections are managed through the join repository, never through
	// gorm's association autosave.
	return GetDB(ctx, r.db).Omit("Sections").Create(personnel).Error
}

func (r *personnelRepository) GetByID(ctx context.Context, id uint) (*model.Personnel, error) {
	var personnel model.Personnel
	if err := GetDB(ctx, r.db).Preload("Sections").First(&personnel, id).Error; err != nil {
		return nil, err
	}
	return &personnel, nil
}

func (r *personnelRepository) List(ctx context.Context) ([]model.Personnel, error) {
	var personnel []model.Personnel
	if err := GetDB(ctx, r.db).Preload("Sections").Order("id desc").Find(&personnel).Error; err != nil {
		return nil, err
	}
	return personnel, nil
}

// MatriculeTaken reports whether another personnel already carries this
// matricule. excludeID lets an update skip the row being updated.
func (r *personnelRepository) MatriculeTaken(ctx context.Context, matricule string, excludeID uint) (bool, error) {
	var count int64
	q := GetDB(ctx, r.db).Model(&model.Personnel{}).Where("matricule = ?", matricule)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *personnelRepository) Update(ctx context.Context, personnel *model.Personnel) error {
	return GetDB(ctx, r.db).Omit("Sections").Save(personnel).Error
}

func (r *personnelRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.Personnel{}, id).Error
}
