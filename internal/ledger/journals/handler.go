package journals

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/identity"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// Handler serves journal-entry endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the journal HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches journal routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapLedgerView)).Get("/", h.list)
	r.With(identity.Require(identity.CapLedgerView)).Get("/{id}", h.get)
	r.With(identity.Require(identity.CapLedgerWrite)).Post("/", h.create)
	r.With(identity.Require(identity.CapLedgerWrite)).Post("/{id}/post", h.post)
	r.With(identity.Require(identity.CapLedgerWrite)).Post("/{id}/reverse", h.reverse)
}

type lineRequest struct {
	AccountID    uuid.UUID       `json:"account_id" validate:"required"`
	Debit        decimal.Decimal `json:"debit_amount"`
	Credit       decimal.Decimal `json:"credit_amount"`
	Memo         string          `json:"memo"`
	DepartmentID *uuid.UUID      `json:"department_id"`
	FundID       *uuid.UUID      `json:"fund_id"`
	CostCenter   string          `json:"cost_center"`
	Quantity     decimal.Decimal `json:"quantity"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

type createRequest struct {
	SubsidiaryID uuid.UUID     `json:"subsidiary_id" validate:"required"`
	EntryDate    string        `json:"entry_date" validate:"required"`
	Memo         string        `json:"memo" validate:"max=500"`
	Source       string        `json:"source" validate:"omitempty,max=50"`
	SourceRef    string        `json:"source_reference" validate:"omitempty,max=100"`
	AutoPost     bool          `json:"auto_post"`
	Lines        []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type lineResponse struct {
	LineNumber   int             `json:"line_number"`
	AccountID    uuid.UUID       `json:"account_id"`
	Debit        decimal.Decimal `json:"debit_amount"`
	Credit       decimal.Decimal `json:"credit_amount"`
	Memo         string          `json:"memo,omitempty"`
	DepartmentID *uuid.UUID      `json:"department_id,omitempty"`
	FundID       *uuid.UUID      `json:"fund_id,omitempty"`
	CostCenter   string          `json:"cost_center,omitempty"`
}

type entryResponse struct {
	ID           uuid.UUID      `json:"id"`
	EntryNumber  int64          `json:"entry_number"`
	SubsidiaryID uuid.UUID      `json:"subsidiary_id"`
	EntryDate    string         `json:"entry_date"`
	Memo         string         `json:"memo,omitempty"`
	Source       string         `json:"source"`
	SourceRef    string         `json:"source_reference,omitempty"`
	Status       string         `json:"status"`
	PostedBy     *uuid.UUID     `json:"posted_by,omitempty"`
	PostedAt     *time.Time     `json:"posted_at,omitempty"`
	ReversedByID *uuid.UUID     `json:"reversed_by_je_id,omitempty"`
	TotalDebits  string         `json:"total_debits"`
	TotalCredits string         `json:"total_credits"`
	Lines        []lineResponse `json:"lines,omitempty"`
}

func toResponse(e Entry, lines []Line) entryResponse {
	debits, credits := Totals(lines)
	out := entryResponse{
		ID:           e.ID,
		EntryNumber:  e.EntryNumber,
		SubsidiaryID: e.SubsidiaryID,
		EntryDate:    e.EntryDate.Format("2006-01-02"),
		Memo:         e.Memo,
		Source:       e.Source,
		SourceRef:    e.SourceRef,
		Status:       string(e.Status),
		PostedBy:     e.PostedBy,
		PostedAt:     e.PostedAt,
		ReversedByID: e.ReversedByID,
		TotalDebits:  debits.StringFixed(2),
		TotalCredits: credits.StringFixed(2),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, lineResponse{
			LineNumber:   l.LineNumber,
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Memo:         l.Memo,
			DepartmentID: l.DepartmentID,
			FundID:       l.FundID,
			CostCenter:   l.CostCenter,
		})
	}
	return out
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:     Status(q.Get("status")),
		Source:     q.Get("source"),
		PeriodCode: q.Get("period"),
	}
	if v := q.Get("subsidiary_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			shared.WriteError(w, h.logger, &shared.ValidationError{Field: "subsidiary_id", Reason: "malformed uuid"})
			return
		}
		filter.SubsidiaryID = &id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			shared.WriteError(w, h.logger, &shared.ValidationError{Field: "limit", Reason: "want a non-negative integer"})
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			shared.WriteError(w, h.logger, &shared.ValidationError{Field: "offset", Reason: "want a non-negative integer"})
			return
		}
		filter.Offset = n
	}
	if v := q.Get("from_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			shared.WriteError(w, h.logger, &shared.ValidationError{Field: "from_date", Reason: "want YYYY-MM-DD"})
			return
		}
		filter.FromDate = &d
	}
	if v := q.Get("to_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			shared.WriteError(w, h.logger, &shared.ValidationError{Field: "to_date", Reason: "want YYYY-MM-DD"})
			return
		}
		filter.ToDate = &d
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]entryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toResponse(e, nil))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	entry, lines, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(entry, lines))
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
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "entry_date", Reason: "want YYYY-MM-DD"})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	in := CreateInput{
		SubsidiaryID: req.SubsidiaryID,
		EntryDate:    entryDate,
		Memo:         req.Memo,
		Source:       req.Source,
		SourceRef:    req.SourceRef,
		AutoPost:     req.AutoPost,
		ActorID:      actor.ID,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, LineInput{
			AccountID:    l.AccountID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Memo:         l.Memo,
			DepartmentID: l.DepartmentID,
			FundID:       l.FundID,
			CostCenter:   l.CostCenter,
			Quantity:     l.Quantity,
			Currency:     l.Currency,
			ExchangeRate: l.ExchangeRate,
		})
	}
	entry, lines, err := h.service.Create(r.Context(), in)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(entry, lines))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	entry, err := h.service.Post(r.Context(), id, actor.ID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"id":           entry.ID,
		"entry_number": entry.EntryNumber,
		"status":       string(entry.Status),
		"posted_at":    entry.PostedAt,
	})
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	original, reversal, err := h.service.Reverse(r.Context(), id, actor.ID)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"original_entry_number": original.EntryNumber,
		"status":                string(original.Status),
		"reversal_id":           reversal.ID,
		"reversal_entry_number": reversal.EntryNumber,
	})
}
