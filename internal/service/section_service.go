package service

import (
	"context"
	"errors"
	"fmt"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"
	"comptabilite/internal/repository"

	"gorm.io/gorm"
)

type SectionRequest struct {
	Label string `json:"label" binding:"required"`
	Unit  string `json:"unit" binding:"required"`
	Type  string `json:"type" binding:"required"`
}

type SectionResponse struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
	Type  string `json:"type"`
}

// SectionService owns section CRUD.
type SectionService interface {
	Create(ctx context.Context, actorID uint, req SectionRequest) (*SectionResponse, error)
	Get(ctx context.Context, id uint) (*SectionResponse, error)
	List(ctx context.Context) ([]SectionResponse, error)
	ListPicker(ctx context.Context) ([]SectionSummary, error)
	Update(ctx context.Context, actorID, id uint, req SectionRequest) (*SectionResponse, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type sectionService struct {
	sections  repository.SectionRepository
	relations repository.PersonnelSectionRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	events    EventPublisher
}

// NewSectionService returns a new instance of SectionService
func NewSectionService(
	sections repository.SectionRepository,
	relations repository.PersonnelSectionRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) SectionService {
	return &sectionService{
		sections:  sections,
		relations: relations,
		audits:    audits,
		txManager: txManager,
		events:    events,
	}
}

func toSectionResponse(s *model.Section) *SectionResponse {
	return &SectionResponse{ID: s.ID, Label: s.Label, Unit: s.Unit, Type: s.Type}
}

func (s *sectionService) Create(ctx context.Context, actorID uint, req SectionRequest) (*SectionResponse, error) {
	section := &model.Section{Label: req.Label, Unit: req.Unit, Type: req.Type}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sections.Create(txCtx, section); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionCreateSection, section.ID, section.Label, req)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventSectionChanged, toSectionResponse(section))
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) Get(ctx context.Context, id uint) (*SectionResponse, error) {
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "section not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) List(ctx context.Context) ([]SectionResponse, error) {
	rows, err := s.sections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	res := make([]SectionResponse, 0, len(rows))
	for i := range rows {
		res = append(res, *toSectionResponse(&rows[i]))
	}
	return res, nil
}

// ListPicker returns id/label pairs ordered alphabetically, the shape
// the personnel assignment form consumes.
func (s *sectionService) ListPicker(ctx context.Context) ([]SectionSummary, error) {
	rows, err := s.sections.ListByLabel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	res := make([]SectionSummary, 0, len(rows))
	for _, row := range rows {
		res = append(res, SectionSummary{ID: row.ID, Label: row.Label})
	}
	return res, nil
}

func (s *sectionService) Update(ctx context.Context, actorID, id uint, req SectionRequest) (*SectionResponse, error) {
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "section not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	section.Label = req.Label
	section.Unit = req.Unit
	section.Type = req.Type

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.sections.Update(txCtx, section); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionUpdateSection, id, req.Label, req)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventSectionChanged, toSectionResponse(section))
	}
	return toSectionResponse(section), nil
}

func (s *sectionService) Delete(ctx context.Context, actorID, id uint) error {
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.E(apperror.ErrNotFound, "section not found")
		}
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	// Assignments referencing the section disappear with it, so no join
	// row is ever left dangling.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.relations.DeleteBySection(txCtx, id); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		if err := s.sections.Delete(txCtx, id); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionDeleteSection, id, section.Label, nil)
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(EventSectionChanged, map[string]uint{"deleted_id": id})
	}
	return nil
}
