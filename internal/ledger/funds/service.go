package funds

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// CreateInput carries the fields supplied for a new fund.
type CreateInput struct {
	Code        string
	Name        string
	Type        FundType
	Description string
	ActorID     uuid.UUID
}

// Service owns fund operations.
type Service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService constructs the funds service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder}
}

// List returns active funds ordered by code.
func (s *Service) List(ctx context.Context) ([]Fund, error) {
	return s.repo.ListActive(ctx)
}

// Get returns a single fund.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Fund, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a new fund.
func (s *Service) Create(ctx context.Context, in CreateInput) (Fund, error) {
	if strings.TrimSpace(in.Code) == "" {
		return Fund{}, &shared.ValidationError{Field: "code", Reason: "required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return Fund{}, &shared.ValidationError{Field: "name", Reason: "required"}
	}
	if !in.Type.Valid() {
		return Fund{}, &shared.ValidationError{Field: "fund_type", Reason: "must be unrestricted, temporarily_restricted, or permanently_restricted"}
	}
	fund, err := s.repo.Insert(ctx, Fund{
		ID:          uuid.New(),
		Code:        in.Code,
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
	})
	if err != nil {
		return Fund{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.fund.create",
		Entity:   "fund",
		EntityID: fund.ID.String(),
		Meta:     map[string]any{"code": fund.Code, "fund_type": string(fund.Type)},
	})
	return fund, nil
}
