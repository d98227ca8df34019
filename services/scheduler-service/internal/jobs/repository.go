package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	otelx "github.com/mike7019/Masajes-sub000/libs/otel"
)

const Schema = `
CREATE TABLE IF NOT EXISTS scheduler_jobs (
	id              BIGSERIAL PRIMARY KEY,
	idempotency_key TEXT NOT NULL UNIQUE,
	reservation_id  TEXT NOT NULL,
	remind_at       TIMESTAMPTZ NOT NULL,
	start_at        TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL DEFAULT 'pending',
	attempts        INT NOT NULL DEFAULT 0,
	max_attempts    INT NOT NULL DEFAULT 5,
	next_run_at     TIMESTAMPTZ NOT NULL,
	last_error      TEXT NOT NULL DEFAULT '',
	traceparent     TEXT NOT NULL DEFAULT '',
	tracestate      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS scheduler_jobs_due_idx ON scheduler_jobs (next_run_at) WHERE status = 'pending';
`

// Job statuses.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusDropped   = "dropped"
	StatusFailed    = "failed"
)

// Job is a reminder due at RemindAt for the reservation starting at StartAt.
type Job struct {
	ID             int64
	IdempotencyKey string
	ReservationID  string
	RemindAt       time.Time
	StartAt        time.Time
	Traceparent    string
	Tracestate     string
	Attempts       int
	MaxAttempts    int
	NextRunAt      time.Time
}

// Key identifies a reminder. Reschedules change StartAt and so produce a new job.
func Key(reservationID string, remindAt, startAt time.Time) string {
	return reservationID + "|" + remindAt.UTC().Format(time.RFC3339) + "|" + startAt.UTC().Format(time.RFC3339)
}

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Insert stores job unless a job with the same idempotency key exists.
func (r *Repository) Insert(ctx context.Context, db outbox.Execer, job Job) error {
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := db.Exec(ctx, `
		INSERT INTO scheduler_jobs (idempotency_key, reservation_id, remind_at, start_at, next_run_at, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $3, $5, $6)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, job.IdempotencyKey, job.ReservationID, job.RemindAt, job.StartAt, traceparent, tracestate)
	return err
}

func (r *Repository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]Job, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, idempotency_key, reservation_id, remind_at, start_at, traceparent, tracestate, attempts, max_attempts, next_run_at
		FROM scheduler_jobs
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.IdempotencyKey, &j.ReservationID, &j.RemindAt, &j.StartAt, &j.Traceparent, &j.Tracestate, &j.Attempts, &j.MaxAttempts, &j.NextRunAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

// MarkDone moves jobs to a terminal status (processed or dropped).
func (r *Repository) MarkDone(ctx context.Context, tx pgx.Tx, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE scheduler_jobs
		SET status = $2, updated_at = now()
		WHERE id = ANY($1)
	`, ids, status)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id int64, attempts int, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := StatusPending
	if attempts >= maxAttempts {
		status = StatusFailed
	}
	_, err := tx.Exec(ctx, `
		UPDATE scheduler_jobs
		SET attempts = $2,
		    status = $3,
		    next_run_at = $4,
		    last_error = $5,
		    updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}
