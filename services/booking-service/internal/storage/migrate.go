package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mike7019/Masajes-sub000/libs/outbox"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,

	`CREATE TABLE IF NOT EXISTS services (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		price_cents      BIGINT NOT NULL DEFAULT 0 CHECK (price_cents >= 0),
		active           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS weekly_availability (
		day_of_week  SMALLINT PRIMARY KEY CHECK (day_of_week BETWEEN 0 AND 6),
		active       BOOLEAN NOT NULL DEFAULT FALSE,
		open_minute  INTEGER NOT NULL DEFAULT 0 CHECK (open_minute BETWEEN 0 AND 1440),
		close_minute INTEGER NOT NULL DEFAULT 0 CHECK (close_minute BETWEEN 0 AND 1440),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (NOT active OR open_minute < close_minute)
	)`,

	`CREATE TABLE IF NOT EXISTS blocked_intervals (
		id          UUID PRIMARY KEY,
		start_at    TIMESTAMPTZ NOT NULL,
		end_at      TIMESTAMPTZ NOT NULL,
		reason      TEXT NOT NULL CHECK (reason <> ''),
		description TEXT NOT NULL DEFAULT '',
		active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (end_at > start_at)
	)`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id           UUID PRIMARY KEY,
		client_name  TEXT NOT NULL,
		client_email TEXT NOT NULL,
		client_phone TEXT NOT NULL,
		service_id   TEXT NOT NULL REFERENCES services(id),
		start_at     TIMESTAMPTZ NOT NULL,
		end_at       TIMESTAMPTZ NOT NULL,
		status       TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED')),
		notes        TEXT NOT NULL DEFAULT '' CHECK (char_length(notes) <= 500),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (end_at > start_at)
	)`,
	`DO $$ BEGIN
		ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap
			EXCLUDE USING gist (tstzrange(start_at, end_at, '[)') WITH &&)
			WHERE (status IN ('PENDING', 'CONFIRMED'));
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE INDEX IF NOT EXISTS reservations_start_idx ON reservations (start_at)`,

	`CREATE TABLE IF NOT EXISTS reservation_history (
		id             UUID PRIMARY KEY,
		reservation_id UUID NOT NULL REFERENCES reservations(id),
		action         TEXT NOT NULL,
		detail         TEXT NOT NULL DEFAULT '',
		actor          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reservation_history_reservation_idx ON reservation_history (reservation_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS booking_idempotency_keys (
		idempotency_key TEXT PRIMARY KEY,
		reservation_id  UUID NOT NULL REFERENCES reservations(id),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	outbox.Schema,
}

// Migrate creates the booking schema. Every statement is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(stmt), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
