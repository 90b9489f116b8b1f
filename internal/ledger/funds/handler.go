package funds

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

// Handler serves fund endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the funds HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches fund routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapLedgerView)).Get("/", h.list)
	r.With(identity.Require(identity.CapLedgerView)).Get("/{id}", h.get)
	r.With(identity.Require(identity.CapAccountManage)).Post("/", h.create)
}

type fundResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	FundType    string    `json:"fund_type"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
}

func toResponse(f Fund) fundResponse {
	return fundResponse{
		ID:          f.ID,
		Code:        f.Code,
		Name:        f.Name,
		FundType:    string(f.Type),
		Description: f.Description,
		IsActive:    f.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]fundResponse, 0, len(items))
	for _, f := range items {
		out = append(out, toResponse(f))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	fund, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(fund))
}

type createRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=200"`
	FundType    string `json:"fund_type" validate:"required"`
	Description string `json:"description"`
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
	fund, err := h.service.Create(r.Context(), CreateInput{
		Code:        req.Code,
		Name:        req.Name,
		Type:        FundType(req.FundType),
		Description: req.Description,
		ActorID:     actor.ID,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(fund))
}
