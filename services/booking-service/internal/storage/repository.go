package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mike7019/Masajes-sub000/libs/db"
	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
)

// scheduleLockKey is the advisory lock taken by every write that must not race with bookings.
const scheduleLockKey int64 = 0x6d6173616a6573

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements booking.Store on Postgres.
type Repository struct {
	*Queries
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewRepository(pool *db.Pool) *Repository {
	ob := outbox.NewRepository()
	return &Repository{
		Queries: &Queries{db: pool, outbox: ob},
		pool:    pool,
		outbox:  ob,
	}
}

func (r *Repository) InTx(ctx context.Context, fn func(q booking.Queries) error) error {
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		return fn(&Queries{db: tx, tx: tx, outbox: r.outbox})
	})
}

// Queries runs statements on the pool or, inside InTx, on a transaction.
type Queries struct {
	db     dbtx
	tx     pgx.Tx
	outbox *outbox.Repository
}

func (q *Queries) LockSchedule(ctx context.Context) error {
	_, err := q.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, scheduleLockKey)
	return err
}

// Enqueue writes evt inside a savepoint so a failed insert leaves the transaction usable.
func (q *Queries) Enqueue(ctx context.Context, evt outbox.Event) error {
	if q.tx == nil {
		return q.outbox.Insert(ctx, q.db, evt)
	}
	sp, err := q.tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := q.outbox.Insert(ctx, sp, evt); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (q *Queries) IdempotentReservation(ctx context.Context, key string) (string, error) {
	var id string
	err := q.db.QueryRow(ctx, `
		SELECT reservation_id::text FROM booking_idempotency_keys WHERE idempotency_key = $1
	`, key).Scan(&id)
	return id, mapErr(err)
}

func (q *Queries) SaveIdempotencyKey(ctx context.Context, key, reservationID string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (idempotency_key, reservation_id)
		VALUES ($1, $2)
	`, key, reservationID)
	return err
}

// mapErr converts driver errors into the sentinels the booking rules understand.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return booking.ErrNotFound
	case db.HasCode(err, db.CodeExclusionViolation):
		return errors.Join(booking.ErrConflict, err)
	default:
		return err
	}
}

var _ booking.Store = (*Repository)(nil)
