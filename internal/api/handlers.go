/**
 * @description
 * HTTP handlers for member enrollment and the subscription lifecycle.
 * Handlers parse requests, call the service layer and translate sentinel
 * errors into status codes; derived fields (end date, status, days left) are
 * attached to responses here so clients never compute them.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fitcore/membership-service/internal/app"
	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

const dateLayout = "2006-01-02"

// Handler holds the application services the handlers interact with.
type Handler struct {
	service     *app.Service
	finance     *app.Finance
	horizonDays int
}

// NewHandler creates a new Handler with the given services.
func NewHandler(service *app.Service, finance *app.Finance, horizonDays int) *Handler {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultExpiryHorizonDays
	}
	return &Handler{service: service, finance: finance, horizonDays: horizonDays}
}

// subscriptionView is the API shape of a period: the stored facts plus the
// derived fields resolved at response time.
type subscriptionView struct {
	domain.Subscription
	EndDate  string                    `json:"end_date"`
	Status   domain.SubscriptionStatus `json:"status"`
	DaysLeft int                       `json:"days_left"`
}

func (h *Handler) viewOf(sub domain.Subscription) subscriptionView {
	today := domain.DateOnly(time.Now())
	return subscriptionView{
		Subscription: sub,
		EndDate:      sub.EndDate().Format(dateLayout),
		Status:       sub.Status(today, h.horizonDays),
		DaysLeft:     sub.DaysUntilExpiry(today),
	}
}

func (h *Handler) viewsOf(subs []domain.Subscription) []subscriptionView {
	views := make([]subscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, h.viewOf(sub))
	}
	return views
}

// handleEnrollMember registers a member together with their first
// subscription period and the matching ledger entries.
func (h *Handler) handleEnrollMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName          string  `json:"first_name"`
		LastName           string  `json:"last_name"`
		Email              *string `json:"email"`
		Phone              *string `json:"phone"`
		PlanID             int64   `json:"plan_id"`
		StartDate          *string `json:"start_date"`
		EnrollmentFeeCents int64   `json:"enrollment_fee_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		respondWithError(w, http.StatusBadRequest, "first_name and last_name are required")
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	member, sub, err := h.service.EnrollMember(r.Context(), app.EnrollMemberInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		PlanID:             req.PlanID,
		StartDate:          startDate,
		EnrollmentFeeCents: req.EnrollmentFeeCents,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"member":       member,
		"subscription": h.viewOf(*sub),
	})
}

// handleListMembers returns all member records.
func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, members)
}

// handleGetMember returns one member record.
func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := h.service.GetMember(r.Context(), memberID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, member)
}

// handleUpdateMember updates a member's attribute fields.
func (h *Handler) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req struct {
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member := &domain.Member{
		ID:        memberID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	if err := h.service.UpdateMember(r.Context(), member); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, member)
}

// handleMemberHistory returns every period of a member, most recent first.
func (h *Handler) handleMemberHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	subs, err := h.service.MemberHistory(r.Context(), memberID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.viewsOf(subs))
}

// handleCurrentSubscription returns the member's current period, or null if
// the member has none; having no period is not an error.
func (h *Handler) handleCurrentSubscription(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	sub, err := h.service.CurrentSubscription(r.Context(), memberID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if sub == nil {
		respondWithJSON(w, http.StatusOK, nil)
		return
	}
	respondWithJSON(w, http.StatusOK, h.viewOf(*sub))
}

// handleStartSubscription creates a period for an existing member.
func (h *Handler) handleStartSubscription(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req struct {
		PlanID             int64   `json:"plan_id"`
		StartDate          *string `json:"start_date"`
		EnrollmentFeeCents int64   `json:"enrollment_fee_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	sub, err := h.service.StartSubscription(r.Context(), memberID, req.PlanID, startDate, req.EnrollmentFeeCents)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, h.viewOf(*sub))
}

// handleRenewSubscription creates a renewal period with day accumulation.
func (h *Handler) handleRenewSubscription(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFromURL(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req struct {
		PlanID             int64   `json:"plan_id"`
		StartDate          *string `json:"start_date"`
		PriceOverrideCents *int64  `json:"price_override_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}

	sub, err := h.service.RenewSubscription(r.Context(), app.RenewInput{
		MemberID:           memberID,
		PlanID:             req.PlanID,
		StartDate:          startDate,
		PriceOverrideCents: req.PriceOverrideCents,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, h.viewOf(*sub))
}

// handleListSubscriptions lists periods; with ?status= it lists each member's
// current period filtered by derived status, otherwise the full history.
func (h *Handler) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		subs, err := h.service.ListSubscriptions(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, h.viewsOf(subs))
		return
	}

	switch domain.SubscriptionStatus(status) {
	case domain.StatusActive, domain.StatusExpiring, domain.StatusExpired:
	default:
		respondWithError(w, http.StatusBadRequest, "status must be active, expiring or expired")
		return
	}

	horizon := h.horizonDays
	if v := r.URL.Query().Get("horizon_days"); v != "" {
		d, err := parsePositiveInt(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "horizon_days must be a positive integer")
			return
		}
		horizon = d
	}

	subs, err := h.service.ListByStatus(r.Context(), domain.SubscriptionStatus(status), horizon)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.viewsOf(subs))
}

// handleStatusCounts returns distinct-member counts per derived status.
func (h *Handler) handleStatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.StatusCounts(r.Context(), h.horizonDays)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}

// handleDashboard aggregates the landing-page data: status counts, the
// current month's summary, the latest ledger entries and a six month
// breakdown. Everything is recomputed from the stores on each request.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.StatusCounts(r.Context(), h.horizonDays)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	monthSummary, err := h.finance.CurrentMonthSummary(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	latest, err := h.finance.LatestEntries(r.Context(), 10)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	breakdown, err := h.finance.MonthlyBreakdown(r.Context(), 6)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status_counts":     counts,
		"month_summary":     monthSummary,
		"latest_entries":    latest,
		"monthly_breakdown": breakdown,
	})
}

func memberIDFromURL(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "memberID"))
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error body.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps sentinel errors to status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrMemberNotFound),
		errors.Is(err, store.ErrPlanNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPlanInactive):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, app.ErrInvalidAmount), errors.Is(err, app.ErrInvalidPlan):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
