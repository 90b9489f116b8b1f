package periods

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Handler serves fiscal-calendar endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the calendar HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches calendar routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapPeriodManage)).Post("/years", h.createYear)
	r.With(identity.Require(identity.CapLedgerView)).Get("/years/{id}/periods", h.listPeriods)
	r.With(identity.Require(identity.CapPeriodManage)).Post("/periods/{id}/close", h.close)
	r.With(identity.Require(identity.CapPeriodManage)).Post("/periods/{id}/reopen", h.reopen)
}

type periodResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
}

func toResponse(p FiscalPeriod) periodResponse {
	return periodResponse{
		ID:        p.ID,
		Code:      p.Code,
		StartDate: p.StartDate.Format("2006-01-02"),
		EndDate:   p.EndDate.Format("2006-01-02"),
		Status:    string(p.Status),
	}
}

type createYearRequest struct {
	Year int `json:"year" validate:"required,min=1900,max=2200"`
}

func (h *Handler) createYear(w http.ResponseWriter, r *http.Request) {
	var req createYearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	fy, ps, err := h.service.CreateYear(r.Context(), req.Year, actor.ID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]periodResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toResponse(p))
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":      fy.ID,
		"name":    fy.Name,
		"periods": out,
	})
}

func (h *Handler) listPeriods(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	items, err := h.service.ListPeriods(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]periodResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toResponse(p))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reopen)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id, actorID uuid.UUID) (FiscalPeriod, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	p, err := op(r.Context(), id, actor.ID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(p))
}
