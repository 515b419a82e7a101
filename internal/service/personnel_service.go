package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"
	"comptabilite/internal/repository"

	"gorm.io/gorm"
)

// SectionIDList accepts a JSON array of section ids given as numbers or
// integer-like strings, the two shapes clients actually send. Anything
// else is an invalid reference format.
type SectionIDList []uint

func (l *SectionIDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperror.E(apperror.ErrBadSectionRef, "sections must be an array of section ids")
	}

	out := make([]uint, 0, len(raw))
	for _, item := range raw {
		var n int64
		if err := json.Unmarshal(item, &n); err != nil {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return apperror.E(apperror.ErrBadSectionRef, "section ids must be integers or integer strings")
			}
			parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			if err != nil {
				return apperror.E(apperror.ErrBadSectionRef, fmt.Sprintf("invalid section id %q", s))
			}
			n = parsed
		}
		if n < 0 {
			return apperror.E(apperror.ErrBadSectionRef, fmt.Sprintf("invalid section id %d", n))
		}
		out = append(out, uint(n))
	}
	*l = out
	return nil
}

// PersonnelRequest is shared by create and update: updates are full
// replacements, including the section assignment. An absent sections
// field means "no sections", not "keep".
type PersonnelRequest struct {
	Matricule     string        `json:"matricule" binding:"required"`
	Nom           string        `json:"nom" binding:"required"`
	Qualification string        `json:"qualification" binding:"required"`
	Affectation   string        `json:"affectation" binding:"required"`
	Sections      SectionIDList `json:"sections"`
}

type SectionSummary struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

type PersonnelResponse struct {
	ID            uint             `json:"id"`
	Matricule     string           `json:"matricule"`
	Nom           string           `json:"nom"`
	Qualification string           `json:"qualification"`
	Affectation   string           `json:"affectation"`
	Sections      []SectionSummary `json:"sections"`
	SectionLabels string           `json:"section_labels"`
}

// PersonnelService owns personnel CRUD and the replace-all maintenance
// of the personnel↔section relation.
type PersonnelService interface {
	Create(ctx context.Context, actorID uint, req PersonnelRequest) (*PersonnelResponse, error)
	Get(ctx context.Context, id uint) (*PersonnelResponse, error)
	List(ctx context.Context) ([]PersonnelResponse, error)
	SectionIDs(ctx context.Context, id uint) ([]uint, error)
	Update(ctx context.Context, actorID, id uint, req PersonnelRequest) (*PersonnelResponse, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type personnelService struct {
	personnel repository.PersonnelRepository
	relations repository.PersonnelSectionRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	events    EventPublisher
}

// NewPersonnelService returns a new instance of PersonnelService
func NewPersonnelService(
	personnel repository.PersonnelRepository,
	relations repository.PersonnelSectionRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) PersonnelService {
	return &personnelService{
		personnel: personnel,
		relations: relations,
		audits:    audits,
		txManager: txManager,
		events:    events,
	}
}

func toPersonnelResponse(p *model.Personnel) *PersonnelResponse {
	sections := make([]SectionSummary, 0, len(p.Sections))
	labels := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		sections = append(sections, SectionSummary{ID: s.ID, Label: s.Label})
		labels = append(labels, s.Label)
	}
	return &PersonnelResponse{
		ID:            p.ID,
		Matricule:     p.Matricule,
		Nom:           p.Nom,
		Qualification: p.Qualification,
		Affectation:   p.Affectation,
		Sections:      sections,
		SectionLabels: strings.Join(labels, ", "),
	}
}

func (s *personnelService) Create(ctx context.Context, actorID uint, req PersonnelRequest) (*PersonnelResponse, error) {
	taken, err := s.personnel.MatriculeTaken(ctx, req.Matricule, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	if taken {
		return nil, apperror.E(apperror.ErrConflict, "matricule already exists")
	}

	p := &model.Personnel{
		Matricule:     req.Matricule,
		Nom:           req.Nom,
		Qualification: req.Qualification,
		Affectation:   req.Affectation,
	}

	// Creation and section assignment commit or fail together: a create
	// with an invalid section reference leaves no personnel row behind.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.personnel.Create(txCtx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.E(apperror.ErrConflict, "matricule already exists")
			}
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		if err := s.relations.Replace(txCtx, p.ID, req.Sections); err != nil {
			return err
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionCreatePersonnel, p.ID, p.Nom, req)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventPersonnelChanged, created)
	}
	return created, nil
}

func (s *personnelService) Get(ctx context.Context, id uint) (*PersonnelResponse, error) {
	p, err := s.personnel.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "personnel not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return toPersonnelResponse(p), nil
}

func (s *personnelService) List(ctx context.Context) ([]PersonnelResponse, error) {
	rows, err := s.personnel.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	res := make([]PersonnelResponse, 0, len(rows))
	for i := range rows {
		res = append(res, *toPersonnelResponse(&rows[i]))
	}
	return res, nil
}

func (s *personnelService) SectionIDs(ctx context.Context, id uint) ([]uint, error) {
	if _, err := s.personnel.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "personnel not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	ids, err := s.relations.ListSectionIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (s *personnelService) Update(ctx context.Context, actorID, id uint, req PersonnelRequest) (*PersonnelResponse, error) {
	p, err := s.personnel.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.E(apperror.ErrNotFound, "personnel not found")
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	taken, err := s.personnel.MatriculeTaken(ctx, req.Matricule, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	if taken {
		return nil, apperror.E(apperror.ErrConflict, "matricule already exists")
	}

	p.Matricule = req.Matricule
	p.Nom = req.Nom
	p.Qualification = req.Qualification
	p.Affectation = req.Affectation
	p.Sections = nil

	// Field update and replace-all share one transaction: a bad section
	// reference rolls back the field changes too.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.personnel.Update(txCtx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.E(apperror.ErrConflict, "matricule already exists")
			}
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		if err := s.relations.Replace(txCtx, id, req.Sections); err != nil {
			return err
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionUpdatePersonnel, id, req.Nom, req)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventPersonnelChanged, updated)
	}
	return updated, nil
}

func (s *personnelService) Delete(ctx context.Context, actorID, id uint) error {
	p, err := s.personnel.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.E(apperror.ErrNotFound, "personnel not found")
		}
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	// Join rows go first so no dangling assignment survives the delete,
	// whatever the engine's cascade support.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.relations.DeleteByPersonnel(txCtx, id); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		if err := s.personnel.Delete(txCtx, id); err != nil {
			return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
		}
		return writeAudit(txCtx, s.audits, actorID, model.ActionDeletePersonnel, id, p.Nom, nil)
	})
	if err != nil {
		return err
	}

	if s.events != nil {
		s.events.Publish(EventPersonnelChanged, map[string]uint{"deleted_id": id})
	}
	return nil
}
