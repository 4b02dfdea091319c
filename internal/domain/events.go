/**
 * @description
 * Message payloads published to RabbitMQ when membership state changes or is
 * about to change. Consumers (notification senders, reporting) are external to
 * this service.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemberEnrolledPayload is published after a member is enrolled with their
// first subscription period.
type MemberEnrolledPayload struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name"`
	SubscriptionID int64     `json:"subscription_id"`
	PlanID         int64     `json:"plan_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// SubscriptionRenewedPayload is published after a renewal period is created.
type SubscriptionRenewedPayload struct {
	MemberID       uuid.UUID `json:"member_id"`
	SubscriptionID int64     `json:"subscription_id"`
	PlanID         int64     `json:"plan_id"`
	CarriedDays    int       `json:"carried_days"`
	EndDate        time.Time `json:"end_date"`
}

// MembershipExpiringPayload is published by the daily expiry scan for each
// member whose current period ends within the horizon.
type MembershipExpiringPayload struct {
	MemberID       uuid.UUID `json:"member_id"`
	MemberName     string    `json:"member_name"`
	SubscriptionID int64     `json:"subscription_id"`
	EndDate        time.Time `json:"end_date"`
	DaysLeft       int       `json:"days_left"`
}
