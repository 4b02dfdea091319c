package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitcore/membership-service/internal/domain"
	"github.com/fitcore/membership-service/internal/store"
)

func newTestFinance(repo store.Repository, today time.Time) *Finance {
	f := NewFinance(repo)
	f.now = func() time.Time { return today }
	return f
}

func TestRecordCustomEntries(t *testing.T) {
	repo := newFakeRepository()
	f := newTestFinance(repo, time.Now())
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	income, err := f.RecordCustomIncome(context.Background(), 50_00, "Day pass", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if income.Classification != domain.ClassIncome {
		t.Fatalf("expected income classification, got %q", income.Classification)
	}

	expense, err := f.RecordCustomExpense(context.Background(), 12_00, "Cleaning supplies", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.Classification != domain.ClassExpense {
		t.Fatalf("expected expense classification, got %q", expense.Classification)
	}

	if len(repo.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(repo.entries))
	}
}

func TestRecordRejectsNonPositiveAmounts(t *testing.T) {
	repo := newFakeRepository()
	f := newTestFinance(repo, time.Now())

	tests := []struct {
		name   string
		amount int64
	}{
		{name: "zero amount", amount: 0},
		{name: "negative amount", amount: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.RecordCustomIncome(context.Background(), tt.amount, "bad", time.Now()); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
			if _, err := f.RecordCustomExpense(context.Background(), tt.amount, "bad", time.Now()); !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("expected ErrInvalidAmount, got %v", err)
			}
		})
	}

	// Rejected amounts must leave the ledger untouched.
	if len(repo.entries) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(repo.entries))
	}
}

func TestSummaryOverDateRange(t *testing.T) {
	repo := newFakeRepository()
	f := newTestFinance(repo, time.Now())
	ctx := context.Background()

	mustRecord := func(entry func(context.Context, int64, string, time.Time) (*domain.FinancialEntry, error), amount int64, desc string, date time.Time) {
		t.Helper()
		if _, err := entry(ctx, amount, desc, date); err != nil {
			t.Fatalf("recording %s: %v", desc, err)
		}
	}

	mustRecord(f.RecordCustomIncome, 50_00, "January income", time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC))
	mustRecord(f.RecordCustomExpense, 12_00, "January expense", time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC))
	mustRecord(f.RecordCustomIncome, 30_00, "February income", time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC))

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	summary, err := f.Summary(ctx, &start, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalIncomeCents != 50_00 {
		t.Fatalf("expected income 5000, got %d", summary.TotalIncomeCents)
	}
	if summary.TotalExpenseCents != 12_00 {
		t.Fatalf("expected expenses 1200, got %d", summary.TotalExpenseCents)
	}
	if summary.TransactionCount != 2 {
		t.Fatalf("expected 2 transactions, got %d", summary.TransactionCount)
	}
	if summary.BalanceCents() != 38_00 {
		t.Fatalf("expected balance 3800, got %d", summary.BalanceCents())
	}

	// Summaries are recomputed from the same entries, so asking again gives
	// the same answer.
	again, err := f.Summary(ctx, &start, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != summary {
		t.Fatalf("expected identical summaries, got %+v then %+v", summary, again)
	}

	// Unbounded summary covers all history.
	all, err := f.Summary(ctx, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all.TotalIncomeCents != 80_00 || all.TransactionCount != 3 {
		t.Fatalf("expected all-history summary, got %+v", all)
	}
}

func TestMonthlyBreakdownZeroFillsEmptyMonths(t *testing.T) {
	repo := newFakeRepository()
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	f := newTestFinance(repo, today)
	ctx := context.Background()

	if _, err := f.RecordCustomIncome(ctx, 50_00, "January income", time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.RecordCustomExpense(ctx, 12_00, "January expense", time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.RecordCustomIncome(ctx, 30_00, "March income", time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	breakdown, err := f.MonthlyBreakdown(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.MonthlyBreakdown{
		{Year: 2024, Month: 1, IncomeCents: 50_00, ExpenseCents: 12_00},
		{Year: 2024, Month: 2},
		{Year: 2024, Month: 3, IncomeCents: 30_00},
	}
	if len(breakdown) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(breakdown))
	}
	for i := range want {
		if breakdown[i] != want[i] {
			t.Fatalf("month %d: expected %+v, got %+v", i, want[i], breakdown[i])
		}
	}
}

func TestMonthlyBreakdownCrossesYearBoundary(t *testing.T) {
	repo := newFakeRepository()
	today := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	f := newTestFinance(repo, today)
	ctx := context.Background()

	if _, err := f.RecordCustomIncome(ctx, 20_00, "December income", time.Date(2023, time.December, 28, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	breakdown, err := f.MonthlyBreakdown(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 months, got %d", len(breakdown))
	}
	if breakdown[0].Year != 2023 || breakdown[0].Month != 12 || breakdown[0].IncomeCents != 20_00 {
		t.Fatalf("unexpected December row: %+v", breakdown[0])
	}
	if breakdown[1].Year != 2024 || breakdown[1].Month != 1 || breakdown[1].IncomeCents != 0 {
		t.Fatalf("unexpected January row: %+v", breakdown[1])
	}
}

func TestLatestEntriesDefaultLimit(t *testing.T) {
	repo := newFakeRepository()
	f := newTestFinance(repo, time.Now())
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
		if _, err := f.RecordCustomIncome(ctx, 10_00, "entry", date); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := f.LatestEntries(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected default limit of 20, got %d", len(entries))
	}
	// Newest first.
	if entries[0].ID != 25 {
		t.Fatalf("expected newest entry first, got id %d", entries[0].ID)
	}
}
