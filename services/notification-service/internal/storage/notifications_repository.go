package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/inbox"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id             BIGSERIAL PRIMARY KEY,
	reservation_id TEXT NOT NULL,
	kind           TEXT NOT NULL,
	recipient      TEXT NOT NULL,
	payload        JSONB NOT NULL,
	status         TEXT NOT NULL,
	provider_id    TEXT NOT NULL DEFAULT '',
	error_reason   TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS notifications_reservation_idx ON notifications (reservation_id, created_at);
`

// Notification is one delivery attempt.
type Notification struct {
	ReservationID string
	Kind          string
	Recipient     string
	Payload       json.RawMessage
	Status        string
	ProviderID    string
	ErrorReason   string
}

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the delivery log and the inbox table used by the consumer.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schema, inbox.Schema} {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate notifications: %w", err)
		}
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	payload := n.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (reservation_id, kind, recipient, payload, status, provider_id, error_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ReservationID, n.Kind, n.Recipient, []byte(payload), n.Status, n.ProviderID, n.ErrorReason)
	return err
}
