package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"comptabilite/internal/apperror"
	"comptabilite/internal/model"
	"comptabilite/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	UserID     uint   `json:"user_id,omitempty"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService exposes the audit trail of privileged writes.
type AuditService interface {
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.audits.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actor := "System"
		var userID uint
		if l.User != nil {
			actor = l.User.Firstname + " " + l.User.Lastname
		}
		if l.UserID != nil {
			userID = *l.UserID
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Actor:      actor,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// writeAudit records who did what inside the caller's transaction, so
// the audit row commits or rolls back with the write it describes.
func writeAudit(ctx context.Context, audits repository.AuditRepository, actorID uint, action string, entityID uint, entityName string, payload interface{}) error {
	details := "{}"
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			details = string(raw)
		}
	}

	var actor *uint
	if actorID != 0 {
		actor = &actorID
	}

	entry := &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   strconv.FormatUint(uint64(entityID), 10),
		EntityName: entityName,
		Details:    details,
	}
	if err := audits.Log(ctx, entry); err != nil {
		return fmt.Errorf("%w: write audit log: %v", apperror.ErrStorage, err)
	}
	return nil
}
