package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/inbox"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/segmentio/kafka-go"
)

// reminderRequested matches the booking.reminder.requested.v1 payload.
type reminderRequested struct {
	ReservationID string    `json:"reservation_id"`
	RemindAt      time.Time `json:"remind_at"`
	StartAt       time.Time `json:"start_at"`
}

var errInvalidRequest = errors.New("invalid reminder request")

func parseRequest(value []byte) (Job, error) {
	var req reminderRequested
	if err := json.Unmarshal(value, &req); err != nil {
		return Job{}, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if req.ReservationID == "" || req.RemindAt.IsZero() || req.StartAt.IsZero() {
		return Job{}, fmt.Errorf("%w: missing fields", errInvalidRequest)
	}
	if !req.RemindAt.Before(req.StartAt) {
		return Job{}, fmt.Errorf("%w: remind_at must be before start_at", errInvalidRequest)
	}
	return Job{
		IdempotencyKey: Key(req.ReservationID, req.RemindAt, req.StartAt),
		ReservationID:  req.ReservationID,
		RemindAt:       req.RemindAt,
		StartAt:        req.StartAt,
	}, nil
}

// Intake stores reminder requests consumed from Kafka as jobs.
type Intake struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
}

func NewIntake(pool *db.Pool, repo *Repository, logger *slog.Logger) *Intake {
	return &Intake{pool: pool, repo: repo, logger: logger}
}

func (i *Intake) Handle(ctx context.Context, msg kafka.Message) error {
	job, err := parseRequest(msg.Value)
	if err != nil {
		i.logger.Error("dropping reminder request", "err", err, "topic", msg.Topic)
		return nil
	}
	if err := i.repo.Insert(ctx, i.pool, job); err != nil {
		return err
	}
	i.logger.Info("reminder scheduled", "reservation_id", job.ReservationID, "remind_at", job.RemindAt)
	return nil
}

// Migrate creates the job, outbox and inbox tables.
func Migrate(ctx context.Context, pool *db.Pool) error {
	for _, stmt := range []string{Schema, outbox.Schema, inbox.Schema} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate scheduler: %w", err)
		}
	}
	return nil
}
