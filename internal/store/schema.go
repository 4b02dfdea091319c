/**
 * @description
 * Idempotent schema bootstrap for the membership-service. Subscription
 * periods and financial entries are append-only tables: rows are inserted
 * and read, never updated or deleted, so history can always be replayed.
 */
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the required tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS members (
            id UUID PRIMARY KEY,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT,
            phone TEXT,
            notes TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS plans (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            duration_days INT NOT NULL CHECK (duration_days > 0),
            price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
            active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS subscriptions (
            id BIGSERIAL PRIMARY KEY,
            member_id UUID NOT NULL REFERENCES members(id),
            plan_id BIGINT NOT NULL REFERENCES plans(id),
            start_date DATE NOT NULL,
            duration_days INT NOT NULL CHECK (duration_days > 0),
            enrollment_fee_cents BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_subscriptions_member_id ON subscriptions (member_id, id DESC);
        CREATE TABLE IF NOT EXISTS financial_entries (
            id BIGSERIAL PRIMARY KEY,
            entry_type TEXT NOT NULL,
            classification TEXT NOT NULL,
            amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
            description TEXT NOT NULL,
            subscription_id BIGINT REFERENCES subscriptions(id),
            entry_date DATE NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_financial_entries_entry_date ON financial_entries (entry_date);
    `)
	return err
}
