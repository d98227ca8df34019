package booking

import (
	"context"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// Queries is the data access the booking rules need. Lookups return ErrNotFound when the
// record is missing; reservation writes return ErrConflict when storage rejects an overlap.
type Queries interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error)

	ListWeekly(ctx context.Context) ([]model.WeeklyDay, error)
	UpsertWeekly(ctx context.Context, day model.WeeklyDay) error

	// LockSchedule serialises writers that must see each other's reservations and blocks.
	LockSchedule(ctx context.Context) error

	// BlockingReservations returns PENDING and CONFIRMED reservations overlapping [from, to).
	BlockingReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
	ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error)
	GetReservation(ctx context.Context, id string, forUpdate bool) (model.Reservation, error)
	InsertReservation(ctx context.Context, r model.Reservation) error
	UpdateReservation(ctx context.Context, r model.Reservation) error
	AppendHistory(ctx context.Context, h model.HistoryEntry) error
	History(ctx context.Context, reservationID string) ([]model.HistoryEntry, error)

	IdempotentReservation(ctx context.Context, key string) (string, error)
	SaveIdempotencyKey(ctx context.Context, key, reservationID string) error

	// ActiveBlocks returns active blocked intervals overlapping [from, to).
	ActiveBlocks(ctx context.Context, from, to time.Time) ([]model.BlockedInterval, error)
	ListBlocks(ctx context.Context, f BlockFilter) ([]model.BlockedInterval, error)
	GetBlock(ctx context.Context, id string, forUpdate bool) (model.BlockedInterval, error)
	InsertBlock(ctx context.Context, b model.BlockedInterval) error
	UpdateBlock(ctx context.Context, b model.BlockedInterval) error
	DeleteBlock(ctx context.Context, id string) error

	// Enqueue stores an outgoing event. A failure must leave the surrounding transaction usable.
	Enqueue(ctx context.Context, evt outbox.Event) error
}

type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
}

type ReservationFilter struct {
	From   *time.Time
	To     *time.Time
	Status *model.Status
	Limit  int
}

type BlockFilter struct {
	From       *time.Time
	To         *time.Time
	ActiveOnly bool
}
