/**
 * @description
 * This file defines the plan catalog model. Plans may be edited or deactivated
 * after creation, but a subscription period never reads the catalog again once
 * created: it keeps its own copy of the duration, and the price is captured in
 * the ledger entry recorded alongside it.
 */
package domain

import "time"

// Plan represents a membership plan offered by the gym.
// PriceCents is the plan price in minor currency units to avoid
// floating-point drift across ledger aggregation.
type Plan struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"duration_days"`
	PriceCents   int64     `json:"price_cents"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
