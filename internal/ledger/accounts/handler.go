package accounts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Handler serves chart-of-accounts endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the accounts HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches account routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapLedgerView)).Get("/", h.list)
	r.With(identity.Require(identity.CapLedgerView)).Get("/{id}", h.get)
	r.With(identity.Require(identity.CapAccountManage)).Post("/", h.create)
	r.With(identity.Require(identity.CapAccountManage)).Put("/{id}", h.update)
}

type accountResponse struct {
	ID            uuid.UUID  `json:"id"`
	AccountNumber string     `json:"account_number"`
	Name          string     `json:"name"`
	AccountType   string     `json:"account_type"`
	NormalBalance string     `json:"normal_balance"`
	ParentID      *uuid.UUID `json:"parent_id,omitempty"`
	FundID        *uuid.UUID `json:"fund_id,omitempty"`
	Description   string     `json:"description,omitempty"`
	IsActive      bool       `json:"is_active"`
}

func toResponse(a Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		AccountNumber: a.Number,
		Name:          a.Name,
		AccountType:   string(a.Type),
		NormalBalance: string(a.NormalBalance),
		ParentID:      a.ParentID,
		FundID:        a.FundID,
		Description:   a.Description,
		IsActive:      a.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Type: AccountType(r.URL.Query().Get("account_type"))}
	active := true
	if r.URL.Query().Get("is_active") != "false" {
		filter.IsActive = &active
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]accountResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(account))
}

type createRequest struct {
	AccountNumber string     `json:"account_number" validate:"required,max=20"`
	Name          string     `json:"name" validate:"required,max=200"`
	AccountType   string     `json:"account_type" validate:"required"`
	NormalBalance string     `json:"normal_balance" validate:"required"`
	ParentID      *uuid.UUID `json:"parent_id"`
	FundID        *uuid.UUID `json:"fund_id"`
	Description   string     `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	account, err := h.service.Create(r.Context(), CreateInput{
		Number:        req.AccountNumber,
		Name:          req.Name,
		Type:          AccountType(req.AccountType),
		NormalBalance: NormalBalance(req.NormalBalance),
		ParentID:      req.ParentID,
		FundID:        req.FundID,
		Description:   req.Description,
		ActorID:       actor.ID,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(account))
}

type updateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsActive    *bool      `json:"is_active"`
	FundID      *uuid.UUID `json:"fund_id"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	account, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		FundID:      req.FundID,
		ActorID:     actor.ID,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(account))
}
