package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mike7019/Masajes-sub000/libs/bookingrpc"
	"github.com/mike7019/Masajes-sub000/libs/db"
	otelx "github.com/mike7019/Masajes-sub000/libs/otel"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	TopicNotificationRequested = "booking.notification.requested.v1"
	TopicReminderDLQ           = "scheduler.reminder.dlq.v1"

	maxRetryDelay = time.Hour
)

// ReservationLookup reads the current state of a reservation from booking-service.
type ReservationLookup interface {
	GetReservation(ctx context.Context, id string) (bookingrpc.Reservation, error)
}

// reminderNotification matches the booking.notification.requested.v1 payload.
type reminderNotification struct {
	ReservationID string    `json:"reservation_id"`
	Kind          string    `json:"kind"`
	Recipient     string    `json:"recipient"`
	ClientName    string    `json:"client_name"`
	ServiceName   string    `json:"service_name"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
}

type dlqEvent struct {
	ReservationID string    `json:"reservation_id"`
	RemindAt      time.Time `json:"remind_at"`
	StartAt       time.Time `json:"start_at"`
	Attempts      int       `json:"attempts"`
	ErrorReason   string    `json:"error_reason"`
	FailedAt      time.Time `json:"failed_at"`
}

type Worker struct {
	pool          *db.Pool
	repo          *Repository
	outbox        *outbox.Repository
	lookup        ReservationLookup
	logger        *slog.Logger
	interval      time.Duration
	batchSize     int
	backoff       time.Duration
	lookupTimeout time.Duration
	now           func() time.Time
}

type WorkerConfig struct {
	Interval      time.Duration
	BatchSize     int
	Backoff       time.Duration
	LookupTimeout time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, outboxRepo *outbox.Repository, lookup ReservationLookup, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	return &Worker{
		pool:          pool,
		repo:          repo,
		outbox:        outboxRepo,
		lookup:        lookup,
		logger:        logger,
		interval:      cfg.Interval,
		batchSize:     cfg.BatchSize,
		backoff:       cfg.Backoff,
		lookupTimeout: cfg.LookupTimeout,
		now:           time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.pool.InTx(ctx, func(tx pgx.Tx) error {
				return w.processBatch(ctx, tx)
			})
			if err != nil && ctx.Err() == nil {
				w.logger.Error("scheduler batch failed", "err", err)
			}
		}
	}
}

type decision int

const (
	decisionSend decision = iota
	decisionDrop
	decisionRetry
)

// decide re-reads the reservation. Reminders are only sent while the reservation still holds
// the slot it was scheduled for.
func (w *Worker) decide(ctx context.Context, job Job) (decision, bookingrpc.Reservation, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, w.lookupTimeout)
	defer cancel()

	res, err := w.lookup.GetReservation(lookupCtx, job.ReservationID)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return decisionDrop, bookingrpc.Reservation{}, nil
		}
		return decisionRetry, bookingrpc.Reservation{}, err
	}
	if !res.Blocking() || !res.StartAt.Equal(job.StartAt) || !res.StartAt.After(w.now()) {
		return decisionDrop, res, nil
	}
	return decisionSend, res, nil
}

func (w *Worker) processBatch(ctx context.Context, tx pgx.Tx) error {
	jobs, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}

	var sent, dropped []int64
	for _, job := range jobs {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		d, res, err := w.decide(jobCtx, job)
		if err == nil && d == decisionSend {
			err = w.enqueueReminder(jobCtx, tx, res)
		}
		switch {
		case err != nil:
			if err := w.fail(jobCtx, tx, job, err.Error()); err != nil {
				return err
			}
		case d == decisionDrop:
			w.logger.Info("stale reminder dropped", "reservation_id", job.ReservationID, "remind_at", job.RemindAt)
			dropped = append(dropped, job.ID)
		default:
			sent = append(sent, job.ID)
		}
	}

	if err := w.repo.MarkDone(ctx, tx, sent, StatusProcessed); err != nil {
		return err
	}
	return w.repo.MarkDone(ctx, tx, dropped, StatusDropped)
}

func (w *Worker) enqueueReminder(ctx context.Context, tx pgx.Tx, res bookingrpc.Reservation) error {
	evt, err := outbox.NewEvent("reservation", res.ID, TopicNotificationRequested, reminderNotification{
		ReservationID: res.ID,
		Kind:          "reminder",
		Recipient:     res.ClientEmail,
		ClientName:    res.ClientName,
		ServiceName:   res.ServiceName,
		Status:        res.Status,
		StartAt:       res.StartAt.UTC(),
		EndAt:         res.EndAt.UTC(),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, evt)
}

func (w *Worker) fail(ctx context.Context, tx pgx.Tx, job Job, reason string) error {
	attempts := job.Attempts + 1
	nextRunAt := w.now().UTC().Add(retryDelay(w.backoff, attempts))
	w.logger.Warn("reminder attempt failed", "reservation_id", job.ReservationID, "attempts", attempts, "err", reason)
	if err := w.repo.MarkFailed(ctx, tx, job.ID, attempts, job.MaxAttempts, nextRunAt, reason); err != nil {
		return err
	}
	if attempts < job.MaxAttempts {
		return nil
	}
	evt, err := outbox.NewEvent("scheduler_job", job.ReservationID, TopicReminderDLQ, dlqEvent{
		ReservationID: job.ReservationID,
		RemindAt:      job.RemindAt.UTC(),
		StartAt:       job.StartAt.UTC(),
		Attempts:      attempts,
		ErrorReason:   reason,
		FailedAt:      w.now().UTC(),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, evt)
}

// retryDelay doubles base for every failed attempt, capped at an hour.
func retryDelay(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}
