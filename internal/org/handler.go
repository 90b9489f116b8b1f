package org

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

// Handler serves subsidiary and department endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the org HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches org routes to the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(identity.Require(identity.CapLedgerView)).Get("/subsidiaries", h.listSubsidiaries)
	r.With(identity.Require(identity.CapOrgManage)).Post("/subsidiaries", h.createSubsidiary)
	r.With(identity.Require(identity.CapLedgerView)).Get("/subsidiaries/{id}/departments", h.listDepartments)
	r.With(identity.Require(identity.CapOrgManage)).Post("/subsidiaries/{id}/departments", h.createDepartment)
}

type subsidiaryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Currency string     `json:"currency"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	IsActive bool       `json:"is_active"`
}

func toSubsidiaryResponse(s Subsidiary) subsidiaryResponse {
	return subsidiaryResponse{ID: s.ID, Code: s.Code, Name: s.Name, Currency: s.Currency, ParentID: s.ParentID, IsActive: s.IsActive}
}

type departmentResponse struct {
	ID           uuid.UUID `json:"id"`
	SubsidiaryID uuid.UUID `json:"subsidiary_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
}

func (h *Handler) listSubsidiaries(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListSubsidiaries(r.Context())
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]subsidiaryResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toSubsidiaryResponse(s))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

type createSubsidiaryRequest struct {
	Code     string     `json:"code" validate:"required,max=20"`
	Name     string     `json:"name" validate:"required,max=200"`
	Currency string     `json:"currency" validate:"omitempty,len=3"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (h *Handler) createSubsidiary(w http.ResponseWriter, r *http.Request) {
	var req createSubsidiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	sub, err := h.service.CreateSubsidiary(r.Context(), CreateSubsidiaryInput{
		Code:     req.Code,
		Name:     req.Name,
		Currency: req.Currency,
		ParentID: req.ParentID,
		ActorID:  actor.ID,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toSubsidiaryResponse(sub))
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	items, err := h.service.ListDepartments(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	out := make([]departmentResponse, 0, len(items))
	for _, d := range items {
		out = append(out, departmentResponse{ID: d.ID, SubsidiaryID: d.SubsidiaryID, Code: d.Code, Name: d.Name, IsActive: d.IsActive})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

type createDepartmentRequest struct {
	Code string `json:"code" validate:"required,max=20"`
	Name string `json:"name" validate:"required,max=200"`
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	subID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Field: "id", Reason: "malformed uuid"})
		return
	}
	var req createDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: "malformed JSON body"})
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.WriteError(w, h.logger, &shared.ValidationError{Reason: err.Error()})
		return
	}
	actor, _ := identity.ActorFromContext(r.Context())
	dep, err := h.service.CreateDepartment(r.Context(), CreateDepartmentInput{
		SubsidiaryID: subID,
		Code:         req.Code,
		Name:         req.Name,
		ActorID:      actor.ID,
	})
	if err != nil {
		shared.WriteError(w, h.logger, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, departmentResponse{ID: dep.ID, SubsidiaryID: dep.SubsidiaryID, Code: dep.Code, Name: dep.Name, IsActive: dep.IsActive})
}
