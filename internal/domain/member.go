/**
 * @description
 * This file defines the member domain model for the membership-service.
 * Members are plain attribute records; all membership state (active, expiring,
 * expired) lives on their subscription periods and is derived at read time.
 */
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member represents a gym member record in the database.
type Member struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the member's display name, used in ledger entry descriptions.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
