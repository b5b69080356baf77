package rules

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/ledgerline/statements/internal/api"
)

// Handler serves the classification rule endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register wires the rule routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rules", h.Create)
	mux.HandleFunc("GET /api/rules", h.List)
	mux.HandleFunc("GET /api/rules/{id}", h.Get)
	mux.HandleFunc("PATCH /api/rules/{id}/status", h.SetStatus)
	mux.HandleFunc("DELETE /api/rules/{id}", h.Delete)
	mux.HandleFunc("POST /api/rules/reapply", h.Reapply)
}

type createRuleRequest struct {
	Pattern     string  `json:"pattern"`
	Priority    int     `json:"priority"`
	Category    string  `json:"category"`
	Subcategory *string `json:"subcategory,omitempty"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Pattern == "" {
		api.WriteError(w, http.StatusBadRequest, "pattern must not be empty")
		return
	}
	if req.Category == "" {
		api.WriteError(w, http.StatusBadRequest, "category must not be empty")
		return
	}

	rule, err := h.service.CreateRule(r.Context(), req.Pattern, req.Priority, req.Category, req.Subcategory)
	if err != nil {
		h.logger.Error("failed to create rule", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to create rule")
		return
	}
	api.WriteJSON(w, http.StatusCreated, rule)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ruleSet, err := h.service.ListRules(r.Context())
	if err != nil {
		h.logger.Error("failed to list rules", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"rules": ruleSet})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	rule, err := h.service.GetRule(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		api.WriteError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get rule", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to get rule")
		return
	}
	api.WriteJSON(w, http.StatusOK, rule)
}

type setStatusRequest struct {
	Status RuleStatus `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.SetRuleStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "rule not found")
			return
		}
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	if err := h.service.DeleteRule(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "rule not found")
			return
		}
		h.logger.Error("failed to delete rule", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reapplyRequest struct {
	StatementID *uuid.UUID `json:"statement_id,omitempty"`
}

// Reapply reruns the active rules over stored transactions. With no
// statement_id in the body the whole transaction table is reclassified.
func (h *Handler) Reapply(w http.ResponseWriter, r *http.Request) {
	var req reapplyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	updated, err := h.service.Reapply(r.Context(), req.StatementID)
	if err != nil {
		h.logger.Error("failed to reapply rules", slog.Any("error", err))
		api.WriteError(w, http.StatusInternalServerError, "failed to reapply rules")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"updated": updated})
}
