/**
 * @description
 * Scheduled job implementations. The expiry scan resolves each member's
 * current period and publishes an event for every membership ending within
 * the horizon, so notification consumers can reach out before it lapses.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo        store.Repository
	publisher   EventPublisher
	logger      *slog.Logger
	horizonDays int
	now         func() time.Time
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo store.Repository, publisher EventPublisher, logger *slog.Logger, horizonDays int) *Jobs {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultExpiryHorizonDays
	}
	return &Jobs{
		repo:        repo,
		publisher:   publisher,
		logger:      logger,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// ProcessExpiringMemberships publishes a membership.expiring event for every
// member whose current period ends within the horizon.
func (j *Jobs) ProcessExpiringMemberships() {
	j.logger.Info("starting expiring membership scan")
	ctx := context.Background()

	current, err := j.repo.ListCurrentSubscriptions(ctx)
	if err != nil {
		j.logger.Error("failed to list current subscriptions", "error", err)
		return
	}

	today := domain.DateOnly(j.now())
	published := 0
	for _, sub := range current {
		if sub.Status(today, j.horizonDays) != domain.StatusExpiring {
			continue
		}

		payload := domain.MembershipExpiringPayload{
			MemberID:       sub.MemberID,
			MemberName:     sub.MemberName,
			SubscriptionID: sub.ID,
			EndDate:        sub.EndDate(),
			DaysLeft:       sub.DaysUntilExpiry(today),
		}
		if err := j.publisher.Publish(ctx, EventsExchange, RouteMembershipExpiring, payload); err != nil {
			j.logger.Error("failed to publish expiring event", "member_id", sub.MemberID, "error", err)
			continue
		}
		published++
	}

	j.logger.Info("expiring membership scan finished", "expiring", published)
}
