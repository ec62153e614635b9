package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type auditEntry struct {
	action  model.AuditAction
	entity  model.EntityType
	id      uuid.UUID
	from    string
	to      string
	details map[string]interface{}
}

func writeAudit(tx repository.Tx, principal model.Principal, e auditEntry) error {
	entry := &model.AuditLog{
		Action:     e.action,
		EntityType: e.entity,
		EntityID:   e.id,
	}
	if principal.UserID != uuid.Nil {
		actor := principal.UserID
		entry.ActorID = &actor
	}
	if e.from != "" {
		from := e.from
		entry.OldStatus = &from
	}
	if e.to != "" {
		to := e.to
		entry.NewStatus = &to
	}
	if len(e.details) > 0 {
		entry.Details = datatypes.JSONMap(e.details)
	}
	return tx.Audit().Create(entry)
}

type AuditService struct {
	uow *UnitOfWork
}

func NewAuditService(uow *UnitOfWork) *AuditService {
	return &AuditService{uow: uow}
}

type AuditListOptions struct {
	EntityType model.EntityType
	EntityID   *uuid.UUID
	ActorID    *uuid.UUID
	Actions    []model.AuditAction
	Limit      int
	Offset     int
}

func (s *AuditService) List(ctx context.Context, opts AuditListOptions) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := s.uow.View(ctx, func(tx repository.Tx) error {
		var err error
		entries, err = tx.Audit().List(repository.AuditFilter{
			EntityType: opts.EntityType,
			EntityID:   opts.EntityID,
			ActorID:    opts.ActorID,
			Actions:    opts.Actions,
			Limit:      opts.Limit,
			Offset:     opts.Offset,
		})
		return err
	})
	return entries, err
}
