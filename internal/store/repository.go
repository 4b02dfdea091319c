/**
 * @description
 * This file defines the Repository interface consumed by the application
 * services, along with the sentinel errors surfaced by the data access layer.
 * Keeping the interface here lets service tests swap in an in-memory fake and
 * keeps all SQL behind one boundary.
 *
 * @notes
 * - Subscriptions and financial entries are append-only: the interface
 *   deliberately has no update or delete operations for them.
 * - FindCurrentSubscription returns (nil, nil) when a member has no periods;
 *   that is a valid empty result, not an error.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fitcore/membership-service/internal/domain"
)

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrPlanInactive         = errors.New("plan is inactive")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Repository defines every persistence operation the service layer needs.
type Repository interface {
	// Members
	CreateMember(ctx context.Context, m *domain.Member) error
	UpdateMember(ctx context.Context, m *domain.Member) error
	FindMemberByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)

	// Plan catalog
	CreatePlan(ctx context.Context, p *domain.Plan) error
	UpdatePlan(ctx context.Context, p *domain.Plan) error
	SetPlanActive(ctx context.Context, id int64, active bool) error
	FindPlanByID(ctx context.Context, id int64) (*domain.Plan, error)
	ListPlans(ctx context.Context, onlyActive bool) ([]domain.Plan, error)

	// Subscription periods (append-only)
	InsertSubscription(ctx context.Context, s *domain.Subscription) error
	FindSubscriptionByID(ctx context.Context, id int64) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	ListSubscriptionsByMember(ctx context.Context, memberID uuid.UUID) ([]domain.Subscription, error)
	FindCurrentSubscription(ctx context.Context, memberID uuid.UUID) (*domain.Subscription, error)
	ListCurrentSubscriptions(ctx context.Context) ([]domain.Subscription, error)

	// Financial ledger (append-only)
	InsertFinancialEntry(ctx context.Context, e *domain.FinancialEntry) error
	ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.FinancialEntry, error)
	ListLatestEntries(ctx context.Context, limit int) ([]domain.FinancialEntry, error)
	Summary(ctx context.Context, start, end *time.Time) (domain.FinancialSummary, error)
	MonthlyBreakdown(ctx context.Context, from, to time.Time) ([]domain.MonthlyBreakdown, error)

	// WithinTx runs fn against a transaction-bound repository with
	// serializable isolation, committing on nil and rolling back on error.
	// Multi-step operations (period + ledger entry) must run inside it.
	WithinTx(ctx context.Context, fn func(Repository) error) error
}
