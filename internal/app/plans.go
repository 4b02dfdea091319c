/**
 * @description
 * Plan catalog operations. Plans are the only mutable records in the system;
 * subscription periods capture a plan's duration at creation time, so catalog
 * edits never rewrite history.
 */
package app

import (
	"context"
	"errors"

	"github.com/fitcore/membership-service/internal/domain"
)

// ErrInvalidPlan is returned when a plan's catalog fields are unusable: a
// missing name, a non-positive duration or a negative price.
var ErrInvalidPlan = errors.New("plan requires a name, a positive duration and a non-negative price")

func validatePlan(plan *domain.Plan) error {
	if plan.Name == "" || plan.DurationDays <= 0 || plan.PriceCents < 0 {
		return ErrInvalidPlan
	}
	return nil
}

// CreatePlan adds a plan to the catalog.
func (s *Service) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	return s.repo.CreatePlan(ctx, plan)
}

// UpdatePlan edits a plan's catalog fields. Existing periods keep the
// duration they captured when they were created.
func (s *Service) UpdatePlan(ctx context.Context, plan *domain.Plan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	return s.repo.UpdatePlan(ctx, plan)
}

// SetPlanActive activates or deactivates a plan. Deactivation only blocks
// new enrollments and renewals on that plan.
func (s *Service) SetPlanActive(ctx context.Context, planID int64, active bool) error {
	return s.repo.SetPlanActive(ctx, planID, active)
}

// GetPlan returns a single plan.
func (s *Service) GetPlan(ctx context.Context, planID int64) (*domain.Plan, error) {
	return s.repo.FindPlanByID(ctx, planID)
}

// ListPlans returns the plan catalog, optionally only active plans.
func (s *Service) ListPlans(ctx context.Context, onlyActive bool) ([]domain.Plan, error) {
	return s.repo.ListPlans(ctx, onlyActive)
}
