/**
 * @description
 * HTTP handlers for the financial ledger: standalone income/expense
 * recording and the aggregation endpoints (summary, monthly breakdown,
 * latest entries).
 */
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleRecordIncome appends a standalone income entry.
func (h *Handler) handleRecordIncome(w http.ResponseWriter, r *http.Request) {
	h.recordCustomEntry(w, r, false)
}

// handleRecordExpense appends a standalone expense entry.
func (h *Handler) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	h.recordCustomEntry(w, r, true)
}

func (h *Handler) recordCustomEntry(w http.ResponseWriter, r *http.Request, expense bool) {
	var req struct {
		AmountCents int64   `json:"amount_cents"`
		Description string  `json:"description"`
		Date        *string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date := time.Now()
	if parsed, err := parseOptionalDate(req.Date); err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	} else if parsed != nil {
		date = *parsed
	}

	record := h.finance.RecordCustomIncome
	if expense {
		record = h.finance.RecordCustomExpense
	}

	entry, err := record(r.Context(), req.AmountCents, req.Description, date)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, entry)
}

// handleSummary aggregates the ledger over an optional inclusive date range;
// without bounds it aggregates all history. ?period=month or ?period=year
// selects the current calendar month/year instead.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("period") {
	case "month":
		summary, err := h.finance.CurrentMonthSummary(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, summary)
		return
	case "year":
		summary, err := h.finance.CurrentYearSummary(r.Context())
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, summary)
		return
	}

	start, err := queryDate(r, "start")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	summary, err := h.finance.Summary(r.Context(), start, end)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleMonthlyBreakdown returns per-month totals for the last N months.
func (h *Handler) handleMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "months must be a positive integer")
			return
		}
		months = n
	}

	breakdown, err := h.finance.MonthlyBreakdown(r.Context(), months)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, breakdown)
}

// handleListEntries returns ledger entries, either the latest N or a date
// range when start and end are supplied.
func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	if start != nil && end != nil {
		entries, err := h.finance.EntriesByDateRange(r.Context(), *start, *end)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, entries)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.finance.LatestEntries(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func queryDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
