/**
 * @description
 * PostgreSQL queries for the append-only financial ledger: entry insertion
 * and the aggregation queries backing summaries and monthly breakdowns.
 *
 * @notes
 * - There is no UPDATE or DELETE statement in this file on purpose; entries
 *   are immutable events and totals are recomputed from them on every call.
 */
package store

import (
	"context"
	"time"

	"github.com/fitcore/membership-service/internal/domain"
)

// InsertFinancialEntry appends one ledger entry and fills in the generated id
// and created_at.
func (r *PostgresRepository) InsertFinancialEntry(ctx context.Context, e *domain.FinancialEntry) error {
	query := `
		INSERT INTO financial_entries (entry_type, classification, amount_cents, description, subscription_id, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		e.EntryType, e.Classification, e.AmountCents, e.Description, e.SubscriptionID, e.EntryDate,
	).Scan(&e.ID, &e.CreatedAt)
}

const financialEntryColumns = `
	id, entry_type, classification, amount_cents, description, subscription_id, entry_date, created_at
`

// ListEntriesByDateRange returns entries with entry_date in [start, end],
// newest first.
func (r *PostgresRepository) ListEntriesByDateRange(ctx context.Context, start, end time.Time) ([]domain.FinancialEntry, error) {
	query := `
		SELECT ` + financialEntryColumns + `
		FROM financial_entries
		WHERE entry_date BETWEEN $1 AND $2
		ORDER BY entry_date DESC, created_at DESC
	`
	return r.queryEntries(ctx, query, start, end)
}

// ListLatestEntries returns the most recent entries up to limit.
func (r *PostgresRepository) ListLatestEntries(ctx context.Context, limit int) ([]domain.FinancialEntry, error) {
	query := `
		SELECT ` + financialEntryColumns + `
		FROM financial_entries
		ORDER BY entry_date DESC, created_at DESC
		LIMIT $1
	`
	return r.queryEntries(ctx, query, limit)
}

// Summary aggregates income, expenses and the entry count over an inclusive
// date range. Nil bounds leave that side unbounded, so (nil, nil) aggregates
// all history.
func (r *PostgresRepository) Summary(ctx context.Context, start, end *time.Time) (domain.FinancialSummary, error) {
	var s domain.FinancialSummary
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN classification = 'income' THEN amount_cents ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN classification = 'expense' THEN amount_cents ELSE 0 END), 0) AS total_expenses,
			COUNT(*) AS transaction_count
		FROM financial_entries
		WHERE ($1::DATE IS NULL OR entry_date >= $1)
		  AND ($2::DATE IS NULL OR entry_date <= $2)
	`
	err := r.db.QueryRow(ctx, query, start, end).Scan(&s.TotalIncomeCents, &s.TotalExpenseCents, &s.TransactionCount)
	if err != nil {
		return domain.FinancialSummary{}, err
	}
	return s, nil
}

// MonthlyBreakdown groups entries by calendar month over [from, to]. Months
// with no entries produce no row here; the finance engine zero-fills the
// window.
func (r *PostgresRepository) MonthlyBreakdown(ctx context.Context, from, to time.Time) ([]domain.MonthlyBreakdown, error) {
	query := `
		SELECT
			EXTRACT(YEAR FROM entry_date)::INT AS year,
			EXTRACT(MONTH FROM entry_date)::INT AS month,
			COALESCE(SUM(CASE WHEN classification = 'income' THEN amount_cents ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN classification = 'expense' THEN amount_cents ELSE 0 END), 0) AS expenses
		FROM financial_entries
		WHERE entry_date BETWEEN $1 AND $2
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []domain.MonthlyBreakdown
	for rows.Next() {
		var b domain.MonthlyBreakdown
		if err := rows.Scan(&b.Year, &b.Month, &b.IncomeCents, &b.ExpenseCents); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.FinancialEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.FinancialEntry
	for rows.Next() {
		var e domain.FinancialEntry
		var entryDate time.Time
		if err := rows.Scan(&e.ID, &e.EntryType, &e.Classification, &e.AmountCents, &e.Description, &e.SubscriptionID, &entryDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EntryDate = domain.DateOnly(entryDate)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
