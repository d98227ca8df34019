package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/availability"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

type Config struct {
	// Location is the single business time zone used for weekdays and opening hours.
	Location    *time.Location
	PhoneRegion string
	// AdminEmail receives adminNotice notifications. Empty disables them.
	AdminEmail      string
	ReminderOffsets []time.Duration
}

// Service applies the scheduling rules on top of a Store.
type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store Store, logger *slog.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// WithClock replaces the wall clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Slots lists bookable start times for serviceID on date (YYYY-MM-DD, business time zone).
func (s *Service) Slots(ctx context.Context, date, serviceID string) ([]string, error) {
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), s.cfg.Location)
	if err != nil {
		return nil, newError(KindInvalidInput, "date: must be formatted YYYY-MM-DD")
	}
	if strings.TrimSpace(serviceID) == "" {
		return nil, newError(KindInvalidInput, "serviceId: is required")
	}
	svc, err := resolveService(ctx, s.store, strings.TrimSpace(serviceID))
	if err != nil {
		return nil, err
	}

	weekly, err := s.store.ListWeekly(ctx)
	if err != nil {
		return nil, internal("list weekly availability", err)
	}
	from, to := availability.DayBounds(day)
	reservations, err := s.store.BlockingReservations(ctx, from, to)
	if err != nil {
		return nil, internal("list reservations", err)
	}
	blocks, err := s.store.ActiveBlocks(ctx, from, to)
	if err != nil {
		return nil, internal("list blocked intervals", err)
	}
	return availability.GenerateSlots(day, svc.Duration(), weekly, reservationIntervals(reservations, ""), blockIntervals(blocks, ""), s.now()), nil
}

func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	services, err := s.store.ListServices(ctx, activeOnly)
	if err != nil {
		return nil, internal("list services", err)
	}
	return services, nil
}

// BusinessHours returns the weekly configuration with a human readable summary.
func (s *Service) BusinessHours(ctx context.Context) ([]model.WeeklyDay, string, error) {
	weekly, err := s.store.ListWeekly(ctx)
	if err != nil {
		return nil, "", internal("list weekly availability", err)
	}
	return weekly, availability.Summary(weekly), nil
}

func (s *Service) UpdateWeeklyDay(ctx context.Context, day int, req WeeklyRequest) (model.WeeklyDay, error) {
	wd, err := ValidateWeekly(day, req)
	if err != nil {
		return model.WeeklyDay{}, err
	}
	if err := s.store.UpsertWeekly(ctx, wd); err != nil {
		return model.WeeklyDay{}, internal("update weekly availability", err)
	}
	s.logger.Info("weekly availability updated", "day_of_week", wd.DayOfWeek, "active", wd.Active,
		"open", availability.FormatClock(wd.OpenMinute), "close", availability.FormatClock(wd.CloseMinute))
	return wd, nil
}

func (s *Service) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	res, err := getReservation(ctx, s.store, id, false)
	if err != nil {
		return model.Reservation{}, err
	}
	res.History, err = s.store.History(ctx, res.ID)
	if err != nil {
		return model.Reservation{}, internal("load history", err)
	}
	return res, nil
}

func (s *Service) ListReservations(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, newError(KindInvalidInput, "to must be after from")
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, newError(KindInvalidInput, "status: unknown value %q", *f.Status)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}
	list, err := s.store.ListReservations(ctx, f)
	if err != nil {
		return nil, internal("list reservations", err)
	}
	return list, nil
}

func resolveService(ctx context.Context, q Queries, id string) (model.Service, error) {
	svc, err := q.GetService(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return model.Service{}, newError(KindServiceNotFound, "service %s does not exist", id)
	}
	if err != nil {
		return model.Service{}, internal("load service", err)
	}
	if !svc.Active {
		return model.Service{}, newError(KindServiceInactive, "service %s is not currently offered", svc.Name)
	}
	return svc, nil
}

func getReservation(ctx context.Context, q Queries, id string, forUpdate bool) (model.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Reservation{}, newError(KindNotFound, "reservation %s not found", id)
	}
	res, err := q.GetReservation(ctx, id, forUpdate)
	if errors.Is(err, ErrNotFound) {
		return model.Reservation{}, newError(KindNotFound, "reservation %s not found", id)
	}
	if err != nil {
		return model.Reservation{}, internal("load reservation", err)
	}
	return res, nil
}

// checkWindow applies the time gates: strictly future, then inside business hours.
func (s *Service) checkWindow(ctx context.Context, q Queries, start time.Time, duration time.Duration) error {
	if !start.After(s.now()) {
		return newError(KindPastDate, "the requested time is in the past")
	}
	weekly, err := q.ListWeekly(ctx)
	if err != nil {
		return internal("list weekly availability", err)
	}
	if !availability.WithinBusinessHours(start.In(s.cfg.Location), duration, weekly) {
		return newError(KindOutsideBusinessHours, "the requested time is outside business hours (%s)", availability.Summary(weekly))
	}
	return nil
}

// checkFree re-reads the day's reservations and blocks and rejects any overlap with [start,end).
// Callers must hold the schedule lock.
func (s *Service) checkFree(ctx context.Context, q Queries, start, end time.Time, excludeID string) error {
	from, to := availability.DayBounds(start.In(s.cfg.Location))
	if end.After(to) {
		to = end
	}
	reservations, err := q.BlockingReservations(ctx, from, to)
	if err != nil {
		return internal("list reservations", err)
	}
	for _, iv := range reservationIntervals(reservations, excludeID) {
		if availability.Overlaps(start, end, iv.Start, iv.End) {
			return slotTaken()
		}
	}
	blocks, err := q.ActiveBlocks(ctx, from, to)
	if err != nil {
		return internal("list blocked intervals", err)
	}
	for _, iv := range blockIntervals(blocks, "") {
		if availability.Overlaps(start, end, iv.Start, iv.End) {
			return newError(KindSlotUnavailable, "the requested time is not available")
		}
	}
	return nil
}

func slotTaken() *Error {
	return newError(KindSlotUnavailable, "the requested time was just taken, please choose another slot")
}

func reservationIntervals(list []model.Reservation, excludeID string) []availability.Interval {
	out := make([]availability.Interval, 0, len(list))
	for _, r := range list {
		if r.ID == excludeID || !r.Status.Blocking() {
			continue
		}
		out = append(out, availability.Interval{Start: r.StartAt, End: r.EndAt})
	}
	return out
}

func blockIntervals(list []model.BlockedInterval, excludeID string) []availability.Interval {
	out := make([]availability.Interval, 0, len(list))
	for _, b := range list {
		if b.ID == excludeID || !b.Active {
			continue
		}
		out = append(out, availability.Interval{Start: b.StartAt, End: b.EndAt})
	}
	return out
}

func (s *Service) historyEntry(reservationID, action, detail, actor string) model.HistoryEntry {
	return model.HistoryEntry{
		ID:            uuid.NewString(),
		ReservationID: reservationID,
		Action:        action,
		Detail:        detail,
		Actor:         actor,
		CreatedAt:     s.now(),
	}
}

// domainError keeps typed errors and wraps anything else as Internal.
func domainError(op string, err error) error {
	var e *Error
	if err == nil || errors.As(err, &e) {
		return err
	}
	return internal(op, err)
}
