package org

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// CreateSubsidiaryInput carries the fields for a new subsidiary. ParentID
// places it under another subsidiary in the entity tree.
type CreateSubsidiaryInput struct {
	Code     string
	Name     string
	Currency string
	ParentID *uuid.UUID
	ActorID  uuid.UUID
}

// CreateDepartmentInput carries the fields for a new department.
type CreateDepartmentInput struct {
	SubsidiaryID uuid.UUID
	Code         string
	Name         string
	ActorID      uuid.UUID
}

// Service owns organisational structure operations.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService constructs the org service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder}
}

func (s *Service) ListSubsidiaries(ctx context.Context) ([]Subsidiary, error) {
	return s.repo.ListSubsidiaries(ctx)
}

func (s *Service) GetSubsidiary(ctx context.Context, id uuid.UUID) (Subsidiary, error) {
	return s.repo.GetSubsidiary(ctx, id)
}

// CreateSubsidiary validates and inserts a new subsidiary. Currency defaults
// to USD when omitted.
func (s *Service) CreateSubsidiary(ctx context.Context, in CreateSubsidiaryInput) (Subsidiary, error) {
	if strings.TrimSpace(in.Code) == "" {
		return Subsidiary{}, &shared.ValidationError{Field: "code", Reason: "required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return Subsidiary{}, &shared.ValidationError{Field: "name", Reason: "required"}
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		return Subsidiary{}, &shared.ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if in.ParentID != nil {
		if _, err := s.repo.GetSubsidiary(ctx, *in.ParentID); err != nil {
			return Subsidiary{}, err
		}
	}
	sub, err := s.repo.InsertSubsidiary(ctx, Subsidiary{
		ID:       uuid.New(),
		Code:     in.Code,
		Name:     in.Name,
		Currency: currency,
		ParentID: in.ParentID,
	})
	if err != nil {
		return Subsidiary{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.subsidiary.create",
		Entity:   "subsidiary",
		EntityID: sub.ID.String(),
		Meta:     map[string]any{"code": sub.Code},
	})
	return sub, nil
}

func (s *Service) ListDepartments(ctx context.Context, subsidiaryID uuid.UUID) ([]Department, error) {
	return s.repo.ListDepartments(ctx, subsidiaryID)
}

// CreateDepartment validates and inserts a new department under a subsidiary.
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error) {
	if strings.TrimSpace(in.Code) == "" {
		return Department{}, &shared.ValidationError{Field: "code", Reason: "required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return Department{}, &shared.ValidationError{Field: "name", Reason: "required"}
	}
	if _, err := s.repo.GetSubsidiary(ctx, in.SubsidiaryID); err != nil {
		return Department{}, err
	}
	dep, err := s.repo.InsertDepartment(ctx, Department{
		ID:           uuid.New(),
		SubsidiaryID: in.SubsidiaryID,
		Code:         in.Code,
		Name:         in.Name,
	})
	if err != nil {
		return Department{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.department.create",
		Entity:   "department",
		EntityID: dep.ID.String(),
		Meta:     map[string]any{"code": dep.Code, "subsidiary_id": dep.SubsidiaryID.String()},
	})
	return dep, nil
}
