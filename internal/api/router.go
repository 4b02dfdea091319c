/**
 * @description
 * This file sets up the HTTP router for the membership-service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps the routes to their
 * corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the membership-service routes.
func NewRouter(h *Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Membership service is healthy"))
	})

	// Protected routes that require staff authentication
	r.Group(func(r chi.Router) {
		r.Use(StaffAuthMiddleware(jwtSecret))

		r.Get("/dashboard", h.handleDashboard)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", h.handleListMembers)
			r.Post("/", h.handleEnrollMember)
			r.Route("/{memberID}", func(r chi.Router) {
				r.Get("/", h.handleGetMember)
				r.Put("/", h.handleUpdateMember)
				r.Get("/subscriptions", h.handleMemberHistory)
				r.Get("/subscription", h.handleCurrentSubscription)
				r.Post("/subscriptions", h.handleStartSubscription)
				r.Post("/renew", h.handleRenewSubscription)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", h.handleListSubscriptions)
			r.Get("/counts", h.handleStatusCounts)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.handleListPlans)
			r.Post("/", h.handleCreatePlan)
			r.Put("/{planID}", h.handleUpdatePlan)
			r.Patch("/{planID}/active", h.handleSetPlanActive)
		})

		r.Route("/finance", func(r chi.Router) {
			r.Get("/entries", h.handleListEntries)
			r.Post("/income", h.handleRecordIncome)
			r.Post("/expense", h.handleRecordExpense)
			r.Get("/summary", h.handleSummary)
			r.Get("/breakdown", h.handleMonthlyBreakdown)
		})
	})

	return r
}
