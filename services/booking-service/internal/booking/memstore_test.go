package booking

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// memStore is an in-memory Store. InTx holds a mutex for the whole transaction and restores
// a snapshot when fn fails.
type memStore struct {
	mu sync.Mutex
	memData

	failEnqueue bool
	// beforeInsert runs inside InsertReservation, used to widen race windows in tests.
	beforeInsert func()
}

type memData struct {
	services     map[string]model.Service
	weekly       map[int]model.WeeklyDay
	reservations map[string]model.Reservation
	history      []model.HistoryEntry
	blocks       map[string]model.BlockedInterval
	idempotency  map[string]string
	events       []outbox.Event
}

func newMemStore() *memStore {
	return &memStore{memData: memData{
		services:     map[string]model.Service{},
		weekly:       map[int]model.WeeklyDay{},
		reservations: map[string]model.Reservation{},
		blocks:       map[string]model.BlockedInterval{},
		idempotency:  map[string]string{},
	}}
}

func (d memData) clone() memData {
	return memData{
		services:     maps.Clone(d.services),
		weekly:       maps.Clone(d.weekly),
		reservations: maps.Clone(d.reservations),
		history:      slices.Clone(d.history),
		blocks:       maps.Clone(d.blocks),
		idempotency:  maps.Clone(d.idempotency),
		events:       slices.Clone(d.events),
	}
}

// memTx is the Queries view handed to InTx callbacks. It shares the store without locking.
type memTx struct{ *memStore }

func (m *memStore) InTx(_ context.Context, fn func(q Queries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.memData.clone()
	if err := fn(memTx{m}); err != nil {
		m.memData = snapshot
		return err
	}
	return nil
}

func (m *memStore) locked(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

func (m *memStore) GetService(ctx context.Context, id string) (svc model.Service, err error) {
	m.locked(func() { svc, err = memTx{m}.GetService(ctx, id) })
	return
}

func (m *memStore) ListServices(ctx context.Context, activeOnly bool) (out []model.Service, err error) {
	m.locked(func() { out, err = memTx{m}.ListServices(ctx, activeOnly) })
	return
}

func (m *memStore) ListWeekly(ctx context.Context) (out []model.WeeklyDay, err error) {
	m.locked(func() { out, err = memTx{m}.ListWeekly(ctx) })
	return
}

func (m *memStore) UpsertWeekly(ctx context.Context, day model.WeeklyDay) (err error) {
	m.locked(func() { err = memTx{m}.UpsertWeekly(ctx, day) })
	return
}

func (m *memStore) BlockingReservations(ctx context.Context, from, to time.Time) (out []model.Reservation, err error) {
	m.locked(func() { out, err = memTx{m}.BlockingReservations(ctx, from, to) })
	return
}

func (m *memStore) ListReservations(ctx context.Context, f ReservationFilter) (out []model.Reservation, err error) {
	m.locked(func() { out, err = memTx{m}.ListReservations(ctx, f) })
	return
}

func (m *memStore) GetReservation(ctx context.Context, id string, forUpdate bool) (r model.Reservation, err error) {
	m.locked(func() { r, err = memTx{m}.GetReservation(ctx, id, forUpdate) })
	return
}

func (m *memStore) History(ctx context.Context, id string) (out []model.HistoryEntry, err error) {
	m.locked(func() { out, err = memTx{m}.History(ctx, id) })
	return
}

func (m *memStore) ActiveBlocks(ctx context.Context, from, to time.Time) (out []model.BlockedInterval, err error) {
	m.locked(func() { out, err = memTx{m}.ActiveBlocks(ctx, from, to) })
	return
}

func (m *memStore) ListBlocks(ctx context.Context, f BlockFilter) (out []model.BlockedInterval, err error) {
	m.locked(func() { out, err = memTx{m}.ListBlocks(ctx, f) })
	return
}

func (m *memStore) GetBlock(ctx context.Context, id string, forUpdate bool) (b model.BlockedInterval, err error) {
	m.locked(func() { b, err = memTx{m}.GetBlock(ctx, id, forUpdate) })
	return
}

func (m *memStore) DeleteBlock(ctx context.Context, id string) (err error) {
	m.locked(func() { err = memTx{m}.DeleteBlock(ctx, id) })
	return
}

func (t memTx) GetService(_ context.Context, id string) (model.Service, error) {
	svc, ok := t.services[id]
	if !ok {
		return model.Service{}, ErrNotFound
	}
	return svc, nil
}

func (t memTx) ListServices(_ context.Context, activeOnly bool) ([]model.Service, error) {
	var out []model.Service
	for _, svc := range t.services {
		if !activeOnly || svc.Active {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t memTx) ListWeekly(context.Context) ([]model.WeeklyDay, error) {
	out := make([]model.WeeklyDay, 0, len(t.weekly))
	for _, d := range t.weekly {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (t memTx) UpsertWeekly(_ context.Context, day model.WeeklyDay) error {
	t.weekly[day.DayOfWeek] = day
	return nil
}

func (t memTx) LockSchedule(context.Context) error { return nil }

func (t memTx) BlockingReservations(_ context.Context, from, to time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.reservations {
		if r.Status.Blocking() && r.StartAt.Before(to) && r.EndAt.After(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t memTx) ListReservations(_ context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range t.reservations {
		if f.From != nil && r.StartAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !r.StartAt.Before(*f.To) {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (t memTx) GetReservation(_ context.Context, id string, _ bool) (model.Reservation, error) {
	r, ok := t.reservations[id]
	if !ok {
		return model.Reservation{}, ErrNotFound
	}
	return r, nil
}

// InsertReservation enforces the no-overlap rule the way the database constraint does.
func (t memTx) InsertReservation(_ context.Context, r model.Reservation) error {
	if t.beforeInsert != nil {
		t.beforeInsert()
	}
	for _, other := range t.reservations {
		if other.Status.Blocking() && r.Status.Blocking() && r.StartAt.Before(other.EndAt) && r.EndAt.After(other.StartAt) {
			return ErrConflict
		}
	}
	r.History = nil
	t.reservations[r.ID] = r
	return nil
}

func (t memTx) UpdateReservation(_ context.Context, r model.Reservation) error {
	if _, ok := t.reservations[r.ID]; !ok {
		return ErrNotFound
	}
	r.History = nil
	t.reservations[r.ID] = r
	return nil
}

func (t memTx) AppendHistory(_ context.Context, h model.HistoryEntry) error {
	t.memStore.history = append(t.memStore.history, h)
	return nil
}

func (t memTx) History(_ context.Context, id string) ([]model.HistoryEntry, error) {
	var out []model.HistoryEntry
	for _, h := range t.memStore.history {
		if h.ReservationID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

func (t memTx) IdempotentReservation(_ context.Context, key string) (string, error) {
	id, ok := t.idempotency[key]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (t memTx) SaveIdempotencyKey(_ context.Context, key, id string) error {
	t.idempotency[key] = id
	return nil
}

func (t memTx) ActiveBlocks(_ context.Context, from, to time.Time) ([]model.BlockedInterval, error) {
	var out []model.BlockedInterval
	for _, b := range t.blocks {
		if b.Active && b.StartAt.Before(to) && b.EndAt.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t memTx) ListBlocks(_ context.Context, f BlockFilter) ([]model.BlockedInterval, error) {
	var out []model.BlockedInterval
	for _, b := range t.blocks {
		if f.ActiveOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (t memTx) GetBlock(_ context.Context, id string, _ bool) (model.BlockedInterval, error) {
	b, ok := t.blocks[id]
	if !ok {
		return model.BlockedInterval{}, ErrNotFound
	}
	return b, nil
}

func (t memTx) InsertBlock(_ context.Context, b model.BlockedInterval) error {
	t.blocks[b.ID] = b
	return nil
}

func (t memTx) UpdateBlock(_ context.Context, b model.BlockedInterval) error {
	t.blocks[b.ID] = b
	return nil
}

func (t memTx) DeleteBlock(_ context.Context, id string) error {
	if _, ok := t.blocks[id]; !ok {
		return ErrNotFound
	}
	delete(t.blocks, id)
	return nil
}

func (t memTx) Enqueue(_ context.Context, evt outbox.Event) error {
	if t.failEnqueue {
		return errors.New("outbox unavailable")
	}
	t.memStore.events = append(t.memStore.events, evt)
	return nil
}

func (m *memStore) InsertReservation(ctx context.Context, r model.Reservation) error {
	return m.InTx(ctx, func(q Queries) error { return q.InsertReservation(ctx, r) })
}

func (m *memStore) UpdateReservation(ctx context.Context, r model.Reservation) error {
	return m.InTx(ctx, func(q Queries) error { return q.UpdateReservation(ctx, r) })
}

func (m *memStore) AppendHistory(ctx context.Context, h model.HistoryEntry) error {
	return m.InTx(ctx, func(q Queries) error { return q.AppendHistory(ctx, h) })
}

func (m *memStore) IdempotentReservation(ctx context.Context, key string) (id string, err error) {
	m.locked(func() { id, err = memTx{m}.IdempotentReservation(ctx, key) })
	return
}

func (m *memStore) SaveIdempotencyKey(ctx context.Context, key, id string) error {
	return m.InTx(ctx, func(q Queries) error { return q.SaveIdempotencyKey(ctx, key, id) })
}

func (m *memStore) InsertBlock(ctx context.Context, b model.BlockedInterval) error {
	return m.InTx(ctx, func(q Queries) error { return q.InsertBlock(ctx, b) })
}

func (m *memStore) UpdateBlock(ctx context.Context, b model.BlockedInterval) error {
	return m.InTx(ctx, func(q Queries) error { return q.UpdateBlock(ctx, b) })
}

func (m *memStore) LockSchedule(context.Context) error { return nil }

func (m *memStore) Enqueue(ctx context.Context, evt outbox.Event) error {
	return m.InTx(ctx, func(q Queries) error { return q.Enqueue(ctx, evt) })
}

func (m *memStore) eventsOf(topic string) []outbox.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Event
	for _, e := range m.events {
		if e.EventType == topic {
			out = append(out, e)
		}
	}
	return out
}
