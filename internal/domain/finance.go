/**
 * @description
 * This file defines the financial ledger models. Ledger entries are immutable
 * events; there is no update or delete path anywhere in the service. Balances,
 * summaries and monthly breakdowns are always computed by aggregating entries,
 * never read from a stored running total.
 *
 * @notes
 * - Amounts are int64 values in the smallest currency unit (cents), which
 *   avoids floating-point inaccuracies with financial data.
 */
package domain

import "time"

// EntryType identifies what kind of event produced a ledger entry.
type EntryType string

const (
	EntryEnrollmentIncome EntryType = "enrollment_income"
	EntryRenewalIncome    EntryType = "renewal_income"
	EntryCustomIncome     EntryType = "custom_income"
	EntryCustomExpense    EntryType = "custom_expense"
)

// Classification splits entries into the two sides of the ledger.
type Classification string

const (
	ClassIncome  Classification = "income"
	ClassExpense Classification = "expense"
)

// ClassificationFor returns the classification consistent with the entry
// type. The ledger engine always derives classification this way rather than
// trusting a caller-supplied value.
func ClassificationFor(t EntryType) Classification {
	if t == EntryCustomExpense {
		return ClassExpense
	}
	return ClassIncome
}

// FinancialEntry is one immutable row of the append-only ledger.
// AmountCents is always positive; the sign is derived from Classification.
type FinancialEntry struct {
	ID             int64          `json:"id"`
	EntryType      EntryType      `json:"entry_type"`
	Classification Classification `json:"classification"`
	AmountCents    int64          `json:"amount_cents"`
	Description    string         `json:"description"`
	SubscriptionID *int64         `json:"subscription_id,omitempty"`
	EntryDate      time.Time      `json:"entry_date"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SignedAmountCents returns the amount with the sign implied by the
// classification.
func (e *FinancialEntry) SignedAmountCents() int64 {
	if e.Classification == ClassExpense {
		return -e.AmountCents
	}
	return e.AmountCents
}

// FinancialSummary is an aggregation over a set of ledger entries. It is
// computed fresh on every query and never stored.
type FinancialSummary struct {
	TotalIncomeCents  int64 `json:"total_income_cents"`
	TotalExpenseCents int64 `json:"total_expense_cents"`
	TransactionCount  int   `json:"transaction_count"`
}

// BalanceCents returns income minus expenses.
func (s FinancialSummary) BalanceCents() int64 {
	return s.TotalIncomeCents - s.TotalExpenseCents
}

// MonthlyBreakdown holds income and expense totals for one calendar month.
type MonthlyBreakdown struct {
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
}

// BalanceCents returns the month's income minus expenses.
func (b MonthlyBreakdown) BalanceCents() int64 {
	return b.IncomeCents - b.ExpenseCents
}
