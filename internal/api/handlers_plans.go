/**
 * @description
 * HTTP handlers for the plan catalog. Plans are ordinary editable records;
 * editing or deactivating a plan never touches existing subscription periods,
 * which captured their duration when they were created.
 */
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fitcore/membership-service/internal/domain"
)

type planRequest struct {
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	PriceCents   int64  `json:"price_cents"`
}

func (p planRequest) validate() string {
	if p.Name == "" {
		return "name is required"
	}
	if p.DurationDays <= 0 {
		return "duration_days must be positive"
	}
	if p.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	return ""
}

// handleListPlans returns the plan catalog; ?active=true restricts to
// currently offered plans.
func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"
	plans, err := h.service.ListPlans(r.Context(), onlyActive)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plans)
}

// handleCreatePlan adds a plan to the catalog.
func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	plan := &domain.Plan{
		Name:         req.Name,
		DurationDays: req.DurationDays,
		PriceCents:   req.PriceCents,
		Active:       true,
	}
	if err := h.service.CreatePlan(r.Context(), plan); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, plan)
}

// handleUpdatePlan edits a plan's catalog fields.
func (h *Handler) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := planIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	plan := &domain.Plan{
		ID:           planID,
		Name:         req.Name,
		DurationDays: req.DurationDays,
		PriceCents:   req.PriceCents,
	}
	if err := h.service.UpdatePlan(r.Context(), plan); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plan)
}

// handleSetPlanActive activates or deactivates a plan.
func (h *Handler) handleSetPlanActive(w http.ResponseWriter, r *http.Request) {
	planID, err := planIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetPlanActive(r.Context(), planID, req.Active); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"id": planID, "active": req.Active})
}

func planIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "planID"), 10, 64)
}
