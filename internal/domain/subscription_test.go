package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSubscriptionEndDate(t *testing.T) {
	tests := []struct {
		name         string
		start        time.Time
		durationDays int
		want         time.Time
	}{
		{
			name:         "thirty day period",
			start:        date(2024, time.January, 1),
			durationDays: 30,
			want:         date(2024, time.January, 31),
		},
		{
			name:         "crosses month boundary",
			start:        date(2024, time.January, 20),
			durationDays: 30,
			want:         date(2024, time.February, 19),
		},
		{
			name:         "crosses leap day",
			start:        date(2024, time.February, 15),
			durationDays: 30,
			want:         date(2024, time.March, 16),
		},
		{
			name:         "year long period",
			start:        date(2024, time.March, 1),
			durationDays: 365,
			want:         date(2025, time.March, 1),
		},
		{
			name:         "time of day is ignored",
			start:        time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC),
			durationDays: 30,
			want:         date(2024, time.January, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Subscription{StartDate: tt.start, DurationDays: tt.durationDays}
			if got := s.EndDate(); !got.Equal(tt.want) {
				t.Fatalf("expected end date %s, got %s", tt.want.Format(time.DateOnly), got.Format(time.DateOnly))
			}
		})
	}
}

func TestSubscriptionStatus(t *testing.T) {
	// Period: 2024-01-01 for 30 days, so it ends 2024-01-31.
	sub := Subscription{
		MemberID:     uuid.New(),
		StartDate:    date(2024, time.January, 1),
		DurationDays: 30,
	}

	tests := []struct {
		name  string
		today time.Time
		want  SubscriptionStatus
	}{
		{
			name:  "well before the horizon",
			today: date(2024, time.January, 20),
			want:  StatusActive,
		},
		{
			name:  "day before the horizon opens",
			today: date(2024, time.January, 23),
			want:  StatusActive,
		},
		{
			name:  "exactly seven days out",
			today: date(2024, time.January, 24),
			want:  StatusExpiring,
		},
		{
			name:  "three days out",
			today: date(2024, time.January, 28),
			want:  StatusExpiring,
		},
		{
			name:  "last covered day",
			today: date(2024, time.January, 30),
			want:  StatusExpiring,
		},
		{
			name:  "ends today is still active",
			today: date(2024, time.January, 31),
			want:  StatusActive,
		},
		{
			name:  "day after the end date",
			today: date(2024, time.February, 1),
			want:  StatusExpired,
		},
		{
			name:  "long after expiry",
			today: date(2024, time.February, 5),
			want:  StatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sub.Status(tt.today, DefaultExpiryHorizonDays); got != tt.want {
				t.Fatalf("on %s expected %q, got %q", tt.today.Format(time.DateOnly), tt.want, got)
			}
		})
	}
}

func TestSubscriptionStatusCustomHorizon(t *testing.T) {
	sub := Subscription{StartDate: date(2024, time.June, 1), DurationDays: 30}

	// End date is 2024-07-01; with a 3 day horizon only the last 3 days
	// before it count as expiring.
	today := date(2024, time.June, 26)
	if got := sub.Status(today, 3); got != StatusActive {
		t.Fatalf("expected active outside a 3 day horizon, got %q", got)
	}
	today = date(2024, time.June, 28)
	if got := sub.Status(today, 3); got != StatusExpiring {
		t.Fatalf("expected expiring inside a 3 day horizon, got %q", got)
	}
}

func TestRemainingDays(t *testing.T) {
	sub := Subscription{StartDate: date(2024, time.January, 1), DurationDays: 30}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{name: "mid period", today: date(2024, time.January, 21), want: 10},
		{name: "start day", today: date(2024, time.January, 1), want: 30},
		{name: "ends today", today: date(2024, time.January, 31), want: 0},
		{name: "already expired clamps to zero", today: date(2024, time.February, 10), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sub.RemainingDays(tt.today); got != tt.want {
				t.Fatalf("on %s expected %d remaining days, got %d", tt.today.Format(time.DateOnly), tt.want, got)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(date(2024, time.January, 1), date(2024, time.January, 31)); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
	if got := DaysBetween(date(2024, time.January, 31), date(2024, time.January, 1)); got != -30 {
		t.Fatalf("expected -30, got %d", got)
	}
	// Timestamps on the same calendar date are zero days apart regardless of
	// the time of day.
	a := time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 10, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
