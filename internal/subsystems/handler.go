package subsystems

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Handler serves subsystem import endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the subsystems HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches import routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapImportRun)).Post("/import", h.importBatch)
	r.With(identity.Require(identity.CapAccountManage)).Get("/mappings/{source}", h.listMappings)
	r.With(identity.Require(identity.CapAccountManage)).Put("/mappings/{source}", h.putMapping)
}

type postingRequest struct {
	AccountCode string          `json:"account_code" validate:"required"`
	Debit       decimal.Decimal `json:"debit_amount"`
	Credit      decimal.Decimal `json:"credit_amount"`
	Memo        string          `json:"memo"`
}

type importRequest struct {
	Source       string           `json:"source" validate:"required,max=50"`
	BatchRef     string           `json:"batch_ref" validate:"required,max=100"`
	SubsidiaryID uuid.UUID        `json:"subsidiary_id" validate:"required"`
	EntryDate    string           `json:"entry_date" validate:"required"`
	Memo         string           `json:"memo" validate:"max=500"`
	Postings     []postingRequest `json:"postings" validate:"required,min=1,dive"`
}

func (h *Handler) importBatch(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "entry_date", Reason: "want YYYY-MM-DD"})
		return
	}
	batch := ImportBatch{
		Source:       req.Source,
		BatchRef:     req.BatchRef,
		SubsidiaryID: req.SubsidiaryID,
		EntryDate:    entryDate,
		Memo:         req.Memo,
	}
	for _, p := range req.Postings {
		batch.Postings = append(batch.Postings, Posting{
			AccountCode: p.AccountCode,
			Debit:       p.Debit,
			Credit:      p.Credit,
			Memo:        p.Memo,
		})
	}
	actor, _ := identity.ActorFromContext(r.Context())
	entry, created, err := h.service.Import(r.Context(), batch, actor.ID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.WriteJSON(w, status, map[string]any{
		"id":           entry.ID,
		"entry_number": entry.EntryNumber,
		"status":       string(entry.Status),
		"created":      created,
	})
}

func (h *Handler) listMappings(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMappings(r.Context(), chi.URLParam(r, "source"))
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	type mappingResponse struct {
		ExternalCode string    `json:"external_code"`
		AccountID    uuid.UUID `json:"account_id"`
	}
	out := make([]mappingResponse, 0, len(items))
	for _, m := range items {
		out = append(out, mappingResponse{ExternalCode: m.ExternalCode, AccountID: m.AccountID})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

type putMappingRequest struct {
	ExternalCode string    `json:"external_code" validate:"required,max=50"`
	AccountID    uuid.UUID `json:"account_id" validate:"required"`
}

func (h *Handler) putMapping(w http.ResponseWriter, r *http.Request) {
	var req putMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	m, err := h.service.PutMapping(r.Context(), chi.URLParam(r, "source"), req.ExternalCode, req.AccountID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"external_code": m.ExternalCode,
		"account_id":    m.AccountID,
	})
}
