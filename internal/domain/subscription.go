/**
 * @description
 * This file defines the subscription period model and the derived-state
 * functions of the lifecycle engine. Periods are append-only: end date and
 * status are never stored, they are computed from the immutable start date and
 * the duration captured from the plan at creation time.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the derived state of a subscription period.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusExpiring SubscriptionStatus = "expiring"
	StatusExpired  SubscriptionStatus = "expired"
)

// DefaultExpiryHorizonDays is the window, in days, within which an unexpired
// period counts as expiring.
const DefaultExpiryHorizonDays = 7

// Subscription represents one immutable subscription period linking a member
// to a plan snapshot. DurationDays is copied from the plan when the period is
// created; later plan edits never alter existing periods.
type Subscription struct {
	ID                 int64     `json:"id"`
	MemberID           uuid.UUID `json:"member_id"`
	PlanID             int64     `json:"plan_id"`
	StartDate          time.Time `json:"start_date"`
	DurationDays       int       `json:"duration_days"`
	EnrollmentFeeCents int64     `json:"enrollment_fee_cents"`
	CreatedAt          time.Time `json:"created_at"`

	// Joined display fields, populated by list queries.
	MemberName string `json:"member_name,omitempty"`
	PlanName   string `json:"plan_name,omitempty"`
}

// EndDate derives the expiry date of the period. Never persisted.
func (s *Subscription) EndDate() time.Time {
	return DateOnly(s.StartDate).AddDate(0, 0, s.DurationDays)
}

// Status derives the period state relative to the given day.
// The active range is inclusive on both ends, so a period ending today is
// still active; the expiring window is (today, today+horizon].
func (s *Subscription) Status(today time.Time, horizonDays int) SubscriptionStatus {
	today = DateOnly(today)
	end := s.EndDate()

	if end.Before(today) {
		return StatusExpired
	}
	if end.After(today) && !end.After(today.AddDate(0, 0, horizonDays)) {
		return StatusExpiring
	}
	return StatusActive
}

// DaysUntilExpiry returns the number of days between today and the end date,
// negative if the period has already expired.
func (s *Subscription) DaysUntilExpiry(today time.Time) int {
	return DaysBetween(today, s.EndDate())
}

// RemainingDays returns the unused days left on the period, never negative.
// This is the quantity carried over onto a renewal.
func (s *Subscription) RemainingDays(today time.Time) int {
	if d := s.DaysUntilExpiry(today); d > 0 {
		return d
	}
	return 0
}

// DateOnly truncates a timestamp to a calendar date in UTC. All lifecycle
// arithmetic operates on calendar dates, not instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (negative if b is
// before a).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
