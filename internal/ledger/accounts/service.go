package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/audit"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// CreateInput carries the fields an administrator supplies for a new account.
type CreateInput struct {
	Number        string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	ParentID      *uuid.UUID
	FundID        *uuid.UUID
	Description   string
	ActorID       uuid.UUID
}

// UpdateInput covers the administrative fields that may change after
// creation. Nil pointers leave the current value untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	IsActive    *bool
	FundID      *uuid.UUID
	ActorID     uuid.UUID
}

// Service owns chart-of-accounts operations.
type Service struct {
	repo  Repository
	audit audit.Recorder
	now   func() time.Time
}

// NewService constructs the accounts service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{repo: repo, audit: recorder, now: time.Now}
}

// List returns accounts matching the filter, ordered by account number.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a new account.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if strings.TrimSpace(in.Number) == "" {
		return Account{}, &shared.ValidationError{Field: "account_number", Reason: "required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return Account{}, &shared.ValidationError{Field: "name", Reason: "required"}
	}
	if !in.Type.Valid() {
		return Account{}, &shared.ValidationError{Field: "account_type", Reason: "must be asset, liability, equity, revenue, or expense"}
	}
	if !in.NormalBalance.Valid() {
		return Account{}, &shared.ValidationError{Field: "normal_balance", Reason: "must be debit or credit"}
	}
	if in.ParentID != nil {
		if _, err := s.repo.Get(ctx, *in.ParentID); err != nil {
			return Account{}, err
		}
	}
	account, err := s.repo.Insert(ctx, Account{
		ID:            uuid.New(),
		Number:        in.Number,
		Name:          in.Name,
		Type:          in.Type,
		NormalBalance: in.NormalBalance,
		ParentID:      in.ParentID,
		FundID:        in.FundID,
		Description:   in.Description,
	})
	if err != nil {
		return Account{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.account.create",
		Entity:   "account",
		EntityID: account.ID.String(),
		Meta:     map[string]any{"account_number": account.Number},
	})
	return account, nil
}

// Update applies administrative changes. Type and normal balance stay fixed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if in.Name != nil {
		account.Name = *in.Name
	}
	if in.Description != nil {
		account.Description = *in.Description
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}
	if in.FundID != nil {
		account.FundID = in.FundID
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return Account{}, err
	}
	_ = s.audit.Record(ctx, audit.Event{
		ActorID:  in.ActorID,
		Action:   "gl.account.update",
		Entity:   "account",
		EntityID: account.ID.String(),
		Meta:     map[string]any{"account_number": account.Number, "is_active": account.IsActive},
	})
	return account, nil
}
