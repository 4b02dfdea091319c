/**
 * @description
 * The finance engine: records immutable ledger entries and answers summary
 * and breakdown queries by aggregating over them. No running balance exists
 * anywhere; every call recomputes from the entry log.
 */
package app

import (
	"context"
	"errors"
	"time"

	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

// ErrInvalidAmount is returned when a caller tries to record a non-positive
// amount. Nothing is written in that case.
var ErrInvalidAmount = errors.New("amount must be positive")

// Finance provides the ledger business logic.
type Finance struct {
	repo store.Repository
	now  func() time.Time
}

// NewFinance creates a new finance engine.
func NewFinance(repo store.Repository) *Finance {
	return &Finance{repo: repo, now: time.Now}
}

// RecordCustomIncome appends a standalone income entry.
func (f *Finance) RecordCustomIncome(ctx context.Context, amountCents int64, description string, date time.Time) (*domain.FinancialEntry, error) {
	return recordEntry(ctx, f.repo, domain.EntryCustomIncome, amountCents, description, nil, date)
}

// RecordCustomExpense appends a standalone expense entry.
func (f *Finance) RecordCustomExpense(ctx context.Context, amountCents int64, description string, date time.Time) (*domain.FinancialEntry, error) {
	return recordEntry(ctx, f.repo, domain.EntryCustomExpense, amountCents, description, nil, date)
}

// Summary aggregates income, expenses and entry count over [start, end].
// Nil bounds aggregate all history.
func (f *Finance) Summary(ctx context.Context, start, end *time.Time) (domain.FinancialSummary, error) {
	return f.repo.Summary(ctx, start, end)
}

// CurrentMonthSummary aggregates the calendar month containing today.
func (f *Finance) CurrentMonthSummary(ctx context.Context) (domain.FinancialSummary, error) {
	today := domain.DateOnly(f.now())
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return f.repo.Summary(ctx, &first, &last)
}

// CurrentYearSummary aggregates the calendar year containing today.
func (f *Finance) CurrentYearSummary(ctx context.Context) (domain.FinancialSummary, error) {
	today := domain.DateOnly(f.now())
	first := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(today.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	return f.repo.Summary(ctx, &first, &last)
}

// LatestEntries returns the most recent ledger entries up to limit.
func (f *Finance) LatestEntries(ctx context.Context, limit int) ([]domain.FinancialEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return f.repo.ListLatestEntries(ctx, limit)
}

// EntriesByDateRange returns entries with entry dates in [start, end].
func (f *Finance) EntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.FinancialEntry, error) {
	return f.repo.ListEntriesByDateRange(ctx, start, end)
}

// MonthlyBreakdown returns per-month totals for the most recent `months`
// calendar months ending with the current one, oldest first. Months without
// entries are zero-filled so charts always get a complete window.
func (f *Finance) MonthlyBreakdown(ctx context.Context, months int) ([]domain.MonthlyBreakdown, error) {
	if months <= 0 {
		months = 1
	}
	today := domain.DateOnly(f.now())
	firstMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	rows, err := f.repo.MonthlyBreakdown(ctx, firstMonth, today)
	if err != nil {
		return nil, err
	}

	type key struct{ year, month int }
	byMonth := make(map[key]domain.MonthlyBreakdown, len(rows))
	for _, b := range rows {
		byMonth[key{b.Year, b.Month}] = b
	}

	breakdown := make([]domain.MonthlyBreakdown, 0, months)
	for i := 0; i < months; i++ {
		m := firstMonth.AddDate(0, i, 0)
		k := key{m.Year(), int(m.Month())}
		if b, ok := byMonth[k]; ok {
			breakdown = append(breakdown, b)
		} else {
			breakdown = append(breakdown, domain.MonthlyBreakdown{Year: k.year, Month: k.month})
		}
	}
	return breakdown, nil
}

// recordEntry validates and appends one ledger entry. The classification is
// always derived from the entry type; callers cannot supply an inconsistent
// pair. It is shared by the finance engine and the lifecycle engine's
// transactional writes.
func recordEntry(ctx context.Context, r store.Repository, t domain.EntryType, amountCents int64, description string, subscriptionID *int64, date time.Time) (*domain.FinancialEntry, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	entry := &domain.FinancialEntry{
		EntryType:      t,
		Classification: domain.ClassificationFor(t),
		AmountCents:    amountCents,
		Description:    description,
		SubscriptionID: subscriptionID,
		EntryDate:      domain.DateOnly(date),
	}
	if err := r.InsertFinancialEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
