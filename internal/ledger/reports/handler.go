package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Handler serves the four report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches report routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapLedgerView)).Get("/trial-balance/{period}", h.trialBalance)
	r.With(identity.Require(identity.CapLedgerView)).Get("/activities/{period}", h.activities)
	r.With(identity.Require(identity.CapLedgerView)).Get("/financial-position/{period}", h.position)
	r.With(identity.Require(identity.CapLedgerView)).Get("/fund-balances/{period}", h.fundBalances)
}

func optionalUUID(w http.ResponseWriter, logger *slog.Logger, r *http.Request, name string) (*uuid.UUID, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		shared.WriteError(w, logger, &shared.ValidationError{Field: name, Reason: "malformed uuid"})
		return nil, false
	}
	return &id, true
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	subsidiaryID, ok := optionalUUID(w, h.logger, r, "subsidiary_id")
	if !ok {
		return
	}
	out, err := h.service.TrialBalance(r.Context(), chi.URLParam(r, "period"), subsidiaryID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	subsidiaryID, ok := optionalUUID(w, h.logger, r, "subsidiary_id")
	if !ok {
		return
	}
	fundID, ok := optionalUUID(w, h.logger, r, "fund_id")
	if !ok {
		return
	}
	out, err := h.service.StatementOfActivities(r.Context(), chi.URLParam(r, "period"), subsidiaryID, fundID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) position(w http.ResponseWriter, r *http.Request) {
	subsidiaryID, ok := optionalUUID(w, h.logger, r, "subsidiary_id")
	if !ok {
		return
	}
	out, err := h.service.StatementOfFinancialPosition(r.Context(), chi.URLParam(r, "period"), subsidiaryID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) fundBalances(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.FundBalances(r.Context(), chi.URLParam(r, "period"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, out)
}
