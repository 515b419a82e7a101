package repository

import (
	"context"
	"fmt"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PersonnelSectionRepository maintains the personnel↔section relation
// under replace-all semantics: after a successful Replace the persisted
// set equals exactly the validated candidate list.
type PersonnelSectionRepository interface {
	Replace(ctx context.Context, personnelID uint, sectionIDs []uint) error
	ListSectionIDs(ctx context.Context, personnelID uint) ([]uint, error)
	DeleteByPersonnel(ctx context.Context, personnelID uint) error
	DeleteBySection(ctx context.Context, sectionID uint) error
}

type personnelSectionRepository struct {
	db *gorm.DB
}

// NewPersonnelSectionRepository returns a new instance of PersonnelSectionRepository
func NewPersonnelSectionRepository(db *gorm.DB) PersonnelSectionRepository {
	return &personnelSectionRepository{db: db}
}

// Replace validates every candidate section id and then swaps the whole
// relation set for the personnel. Callers must run it inside a
// transaction (via TransactionManager) so a failure between the delete
// and the insert is never observable. An empty list clears the set.
func (r *personnelSectionRepository) Replace(ctx context.Context, personnelID uint, sectionIDs []uint) error {
	db := GetDB(ctx, r.db)

	// Lock the parent row so two concurrent replaces on the same
	// personnel serialize instead of interleaving. SQLite has no
	// FOR UPDATE and single-writer semantics already give the guarantee.
	locked := db
	if db.Dialector.Name() == "postgres" {
		locked = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var parent model.Personnel
	if err := locked.Select("id").First(&parent, personnelID).Error; err != nil {
		return err
	}

	ids := dedupeIDs(sectionIDs)

	// Validate every reference before touching any state. The first
	// missing id, in input order, aborts the whole operation.
	if len(ids) > 0 {
		var existing []uint
		if err := db.Model(&model.Section{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		known := make(map[uint]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}
		for _, id := range sectionIDs {
			if !known[id] {
				return &apperror.SectionRefError{ID: id}
			}
		}
	}

	if err := db.Where("personnel_id = ?", personnelID).Delete(&model.PersonnelSection{}).Error; err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	if len(ids) == 0 {
		return nil
	}

	rows := make([]model.PersonnelSection, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.PersonnelSection{PersonnelID: personnelID, SectionID: id})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return nil
}

func (r *personnelSectionRepository) ListSectionIDs(ctx context.Context, personnelID uint) ([]uint, error) {
	var ids []uint
	err := GetDB(ctx, r.db).Model(&model.PersonnelSection{}).
		Where("personnel_id = ?", personnelID).
		Order("section_id asc").
		Pluck("section_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *personnelSectionRepository) DeleteByPersonnel(ctx context.Context, personnelID uint) error {
	return GetDB(ctx, r.db).Where("personnel_id = ?", personnelID).Delete(&model.PersonnelSection{}).Error
}

func (r *personnelSectionRepository) DeleteBySection(ctx context.Context, sectionID uint) error {
	return GetDB(ctx, r.db).Where("section_id = ?", sectionID).Delete(&model.PersonnelSection{}).Error
}

// dedupeIDs drops repeated candidates while preserving input order, so
// submitting the same id twice never surfaces a duplicate-row error.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
