package inbox

import (
	"context"

	"github.com/mike7019/Masajes-sub000/libs/db"
)

const Schema = `
CREATE TABLE IF NOT EXISTS inbox_events (
	event_id    TEXT PRIMARY KEY,
	event_type  TEXT NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Repository records consumed event ids so redelivered Kafka messages are handled once.
type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record returns false when the event was already seen.
func (r *Repository) Record(ctx context.Context, eventID string, eventType string) (bool, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
	`, eventID, eventType)
	if err == nil {
		return true, nil
	}
	if db.HasCode(err, db.CodeUniqueViolation) {
		return false, nil
	}
	return false, err
}
