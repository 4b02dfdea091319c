/**
 * @description
 * This file contains the subscription lifecycle engine: enrollment, period
 * creation, renewal with day accumulation, and every status listing/count.
 * The Service layer orchestrates data from the repository and applies the
 * business rules; it never mutates existing periods, it only appends new ones.
 *
 * @notes
 * - A member's current period is always the one with the highest id. Status
 *   listings and counts resolve the current period per member first, so a
 *   member with many historical periods is reported exactly once.
 * - Multi-step writes (period + ledger entry) run inside Repository.WithinTx;
 *   a failure on either side rolls back both.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

// EventsExchange is the AMQP topic exchange membership events are published to.
const EventsExchange = "membership.events"

// Routing keys for published events.
const (
	RouteMemberEnrolled      = "member.enrolled"
	RouteSubscriptionRenewed = "subscription.renewed"
	RouteMembershipExpiring  = "membership.expiring"
)

// EventPublisher defines the interface for publishing membership events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// Service provides the business logic for membership lifecycle management.
type Service struct {
	repo      store.Repository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new membership service.
func NewService(repo store.Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// EnrollMemberInput carries everything needed to register a member with their
// first subscription period in one atomic operation.
type EnrollMemberInput struct {
	FirstName          string
	LastName           string
	Email              *string
	Phone              *string
	PlanID             int64
	StartDate          *time.Time
	EnrollmentFeeCents int64
}

// RenewInput carries the parameters of a renewal.
type RenewInput struct {
	MemberID           uuid.UUID
	PlanID             int64
	StartDate          *time.Time
	PriceOverrideCents *int64
}

// StatusCounts holds the distinct-member counts per derived status.
type StatusCounts struct {
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

// EnrollMember atomically creates the member, their first subscription period
// and the matching ledger entries. Nothing is written if any step fails.
func (s *Service) EnrollMember(ctx context.Context, in EnrollMemberInput) (*domain.Member, *domain.Subscription, error) {
	plan, err := s.activePlan(ctx, in.PlanID)
	if err != nil {
		return nil, nil, err
	}

	startDate := domain.DateOnly(s.now())
	if in.StartDate != nil {
		startDate = domain.DateOnly(*in.StartDate)
	}

	member := &domain.Member{
		ID:        uuid.New(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	var sub *domain.Subscription

	err = s.repo.WithinTx(ctx, func(tx store.Repository) error {
		if err := tx.CreateMember(ctx, member); err != nil {
			return err
		}

		var txErr error
		sub, txErr = s.appendPeriod(ctx, tx, member, plan, startDate, plan.DurationDays, in.EnrollmentFeeCents)
		if txErr != nil {
			return txErr
		}

		// Zero-price plans produce no income entry; the ledger only ever
		// stores strictly positive amounts.
		if plan.PriceCents > 0 {
			if _, txErr = recordEntry(ctx, tx, domain.EntryEnrollmentIncome, plan.PriceCents,
				member.FullName()+" - "+plan.Name, &sub.ID, startDate); txErr != nil {
				return txErr
			}
		}

		// The enrollment fee is a separate income event so plan revenue and
		// one-off fees stay distinguishable in the ledger.
		if in.EnrollmentFeeCents > 0 {
			if _, txErr = recordEntry(ctx, tx, domain.EntryCustomIncome, in.EnrollmentFeeCents,
				"Enrollment fee - "+member.FullName(), &sub.ID, startDate); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, RouteMemberEnrolled, domain.MemberEnrolledPayload{
		MemberID:       member.ID,
		MemberName:     member.FullName(),
		SubscriptionID: sub.ID,
		PlanID:         plan.ID,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate(),
	})
	return member, sub, nil
}

// StartSubscription creates a period for an existing member, together with
// its enrollment income entry, in one transaction.
func (s *Service) StartSubscription(ctx context.Context, memberID uuid.UUID, planID int64, startDate *time.Time, feeCents int64) (*domain.Subscription, error) {
	member, err := s.repo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	plan, err := s.activePlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	start := domain.DateOnly(s.now())
	if startDate != nil {
		start = domain.DateOnly(*startDate)
	}

	var sub *domain.Subscription
	err = s.repo.WithinTx(ctx, func(tx store.Repository) error {
		var txErr error
		sub, txErr = s.appendPeriod(ctx, tx, member, plan, start, plan.DurationDays, feeCents)
		if txErr != nil {
			return txErr
		}
		if plan.PriceCents > 0 {
			_, txErr = recordEntry(ctx, tx, domain.EntryEnrollmentIncome, plan.PriceCents,
				member.FullName()+" - "+plan.Name, &sub.ID, start)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// RenewSubscription creates a renewal period using the accumulation rule: any
// unused days on the member's current period are added to the new period's
// captured duration, so renewing early never loses paid-for days. The new
// period starts today (or the supplied date), never at the old end date.
func (s *Service) RenewSubscription(ctx context.Context, in RenewInput) (*domain.Subscription, error) {
	member, err := s.repo.FindMemberByID(ctx, in.MemberID)
	if err != nil {
		return nil, err
	}
	plan, err := s.activePlan(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.now())
	start := today
	if in.StartDate != nil {
		start = domain.DateOnly(*in.StartDate)
	}

	price := plan.PriceCents
	if in.PriceOverrideCents != nil && *in.PriceOverrideCents >= 0 {
		price = *in.PriceOverrideCents
	}

	var sub *domain.Subscription
	var carried int
	err = s.repo.WithinTx(ctx, func(tx store.Repository) error {
		// Read the current period inside the transaction: serializable
		// isolation is what stops two concurrent renewals from both carrying
		// over the same remaining days.
		current, txErr := tx.FindCurrentSubscription(ctx, in.MemberID)
		if txErr != nil {
			return txErr
		}
		carried = 0
		if current != nil {
			carried = current.RemainingDays(today)
		}

		sub, txErr = s.appendPeriod(ctx, tx, member, plan, start, plan.DurationDays+carried, 0)
		if txErr != nil {
			return txErr
		}

		// A zero price (free plan or a comped renewal via override) is valid
		// and simply writes no income entry.
		if price > 0 {
			_, txErr = recordEntry(ctx, tx, domain.EntryRenewalIncome, price,
				member.FullName()+" - Renewal "+plan.Name, &sub.ID, start)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, RouteSubscriptionRenewed, domain.SubscriptionRenewedPayload{
		MemberID:       member.ID,
		SubscriptionID: sub.ID,
		PlanID:         plan.ID,
		CarriedDays:    carried,
		EndDate:        sub.EndDate(),
	})
	return sub, nil
}

// CurrentSubscription returns the member's most recently created period, or
// nil when the member has none.
func (s *Service) CurrentSubscription(ctx context.Context, memberID uuid.UUID) (*domain.Subscription, error) {
	if _, err := s.repo.FindMemberByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.FindCurrentSubscription(ctx, memberID)
}

// MemberHistory returns every period of a member, most recent first.
func (s *Service) MemberHistory(ctx context.Context, memberID uuid.UUID) ([]domain.Subscription, error) {
	if _, err := s.repo.FindMemberByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.ListSubscriptionsByMember(ctx, memberID)
}

// ListSubscriptions returns the full period history across all members,
// soonest expiry first.
func (s *Service) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return s.repo.ListSubscriptions(ctx)
}

// ListByStatus returns the current periods whose derived status matches,
// ordered by end date ascending. Only each member's current period is
// considered, so older periods never qualify on their own.
func (s *Service) ListByStatus(ctx context.Context, status domain.SubscriptionStatus, horizonDays int) ([]domain.Subscription, error) {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultExpiryHorizonDays
	}
	current, err := s.repo.ListCurrentSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.DateOnly(s.now())
	var matched []domain.Subscription
	for _, sub := range current {
		if sub.Status(today, horizonDays) == status {
			matched = append(matched, sub)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EndDate().Before(matched[j].EndDate())
	})
	return matched, nil
}

// StatusCounts counts distinct members per derived status. Each member is
// attributed to the status of their current period only.
func (s *Service) StatusCounts(ctx context.Context, horizonDays int) (StatusCounts, error) {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultExpiryHorizonDays
	}
	current, err := s.repo.ListCurrentSubscriptions(ctx)
	if err != nil {
		return StatusCounts{}, err
	}

	today := domain.DateOnly(s.now())
	var counts StatusCounts
	for _, sub := range current {
		switch sub.Status(today, horizonDays) {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusExpiring:
			counts.Expiring++
		case domain.StatusExpired:
			counts.Expired++
		}
	}
	return counts, nil
}

// GetMember returns a single member record.
func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	return s.repo.FindMemberByID(ctx, id)
}

// ListMembers returns all member records.
func (s *Service) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return s.repo.ListMembers(ctx)
}

// UpdateMember updates a member's attribute fields.
func (s *Service) UpdateMember(ctx context.Context, m *domain.Member) error {
	return s.repo.UpdateMember(ctx, m)
}

// appendPeriod builds and inserts one immutable period row.
func (s *Service) appendPeriod(ctx context.Context, tx store.Repository, member *domain.Member, plan *domain.Plan, start time.Time, durationDays int, feeCents int64) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		MemberID:           member.ID,
		PlanID:             plan.ID,
		StartDate:          start,
		DurationDays:       durationDays,
		EnrollmentFeeCents: feeCents,
		MemberName:         member.FullName(),
		PlanName:           plan.Name,
	}
	if err := tx.InsertSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("append subscription period: %w", err)
	}
	return sub, nil
}

// activePlan loads a plan and rejects inactive ones.
func (s *Service) activePlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	plan, err := s.repo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, store.ErrPlanInactive
	}
	return plan, nil
}

// publish sends an event, logging failures instead of surfacing them: the
// storage transaction has already committed and must not be affected.
func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, EventsExchange, routingKey, body); err != nil {
		s.logger.Error("failed to publish event", "routing_key", routingKey, "error", err)
	}
}
