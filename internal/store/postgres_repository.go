/**
 * @description
 * This file provides the PostgreSQL implementation of the Repository
 * interface for members, plans and subscription periods.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: the PostgreSQL driver for database operations.
 * - internal/domain: the domain models used for data transfer.
 *
 * @notes
 * - End dates are never stored. Queries that need them compute
 *   (start_date + duration_days) inline, so derived state always reflects
 *   the immutable stored facts.
 * - A member's current period is the one with the highest id, not the one
 *   with the latest start date: immediate renewals can share a start date.
 */
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitcore/membership-service/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// methods work inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is the concrete Repository backed by PostgreSQL.
type PostgresRepository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository bound to a connection pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool, pool: pool}
}

// WithinTx runs fn against a transaction-bound copy of the repository.
// The transaction uses serializable isolation: it is the only guard against
// two concurrent renewals reading the same current period and both carrying
// over its remaining days.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		// Already inside a transaction; reuse it.
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- Members ---

// CreateMember inserts a member row, filling in the generated timestamps.
func (r *PostgresRepository) CreateMember(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO members (id, first_name, last_name, email, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.Notes).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

// UpdateMember updates a member's attribute fields.
func (r *PostgresRepository) UpdateMember(ctx context.Context, m *domain.Member) error {
	query := `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// FindMemberByID retrieves a member by id.
func (r *PostgresRepository) FindMemberByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var m domain.Member
	query := `
		SELECT id, first_name, last_name, email, phone, notes, created_at, updated_at
		FROM members
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListMembers returns all members ordered by last name.
func (r *PostgresRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, notes, created_at, updated_at
		FROM members
		ORDER BY last_name, first_name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Notes, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// --- Plan catalog ---

// CreatePlan inserts a plan row and fills in the generated id and timestamps.
func (r *PostgresRepository) CreatePlan(ctx context.Context, p *domain.Plan) error {
	query := `
		INSERT INTO plans (name, duration_days, price_cents, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, p.Name, p.DurationDays, p.PriceCents, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// UpdatePlan updates a plan's catalog fields. Existing periods are unaffected:
// they captured their duration at creation time.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, p *domain.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, duration_days = $3, price_cents = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.DurationDays, p.PriceCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// SetPlanActive toggles a plan's active flag.
func (r *PostgresRepository) SetPlanActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE plans SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// FindPlanByID retrieves a plan by id.
func (r *PostgresRepository) FindPlanByID(ctx context.Context, id int64) (*domain.Plan, error) {
	var p domain.Plan
	query := `
		SELECT id, name, duration_days, price_cents, active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.DurationDays, &p.PriceCents, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPlans returns plans, optionally restricted to active ones.
func (r *PostgresRepository) ListPlans(ctx context.Context, onlyActive bool) ([]domain.Plan, error) {
	query := `
		SELECT id, name, duration_days, price_cents, active, created_at, updated_at
		FROM plans
		WHERE ($1 = FALSE OR active = TRUE)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationDays, &p.PriceCents, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// --- Subscription periods ---

const subscriptionColumns = `
	s.id, s.member_id, s.plan_id, s.start_date, s.duration_days,
	s.enrollment_fee_cents, s.created_at,
	m.first_name || ' ' || m.last_name AS member_name,
	p.name AS plan_name
`

const subscriptionJoins = `
	FROM subscriptions s
	JOIN members m ON m.id = s.member_id
	JOIN plans p ON p.id = s.plan_id
`

// InsertSubscription appends one period row and fills in the generated id and
// created_at. Periods are never updated or deleted afterwards.
func (r *PostgresRepository) InsertSubscription(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (member_id, plan_id, start_date, duration_days, enrollment_fee_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		s.MemberID, s.PlanID, s.StartDate, s.DurationDays, s.EnrollmentFeeCents,
	).Scan(&s.ID, &s.CreatedAt)
}

// FindSubscriptionByID retrieves one period with its display fields.
func (r *PostgresRepository) FindSubscriptionByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	row := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+subscriptionJoins+` WHERE s.id = $1`, id)
	s, err := scanSubscription(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListSubscriptions returns every period, soonest expiry first.
func (r *PostgresRepository) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + subscriptionJoins + `
		ORDER BY s.start_date + s.duration_days, s.id`
	return r.querySubscriptions(ctx, query)
}

// ListSubscriptionsByMember returns a member's full period history, most
// recent first.
func (r *PostgresRepository) ListSubscriptionsByMember(ctx context.Context, memberID uuid.UUID) ([]domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + subscriptionJoins + `
		WHERE s.member_id = $1
		ORDER BY s.id DESC`
	return r.querySubscriptions(ctx, query, memberID)
}

// FindCurrentSubscription returns the member's period with the highest id, or
// (nil, nil) if the member has no periods.
func (r *PostgresRepository) FindCurrentSubscription(ctx context.Context, memberID uuid.UUID) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + subscriptionJoins + `
		WHERE s.member_id = $1
		ORDER BY s.id DESC
		LIMIT 1`
	row := r.db.QueryRow(ctx, query, memberID)
	s, err := scanSubscription(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListCurrentSubscriptions returns exactly one period per member: the one
// with the highest id. Every status listing and count starts from this set so
// that older periods of the same member never leak into the results.
func (r *PostgresRepository) ListCurrentSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := `SELECT DISTINCT ON (s.member_id) ` + subscriptionColumns + subscriptionJoins + `
		ORDER BY s.member_id, s.id DESC`
	return r.querySubscriptions(ctx, query)
}

func (r *PostgresRepository) querySubscriptions(ctx context.Context, query string, args ...any) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	var startDate, createdAt time.Time
	err := row.Scan(
		&s.ID, &s.MemberID, &s.PlanID, &startDate, &s.DurationDays,
		&s.EnrollmentFeeCents, &createdAt, &s.MemberName, &s.PlanName,
	)
	if err != nil {
		return nil, err
	}
	s.StartDate = domain.DateOnly(startDate)
	s.CreatedAt = createdAt
	return &s, nil
}
