package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// Channel is where a booking came from.
type Channel string

const (
	ChannelPublic Channel = "public"
	ChannelAdmin  Channel = "admin"
)

func (c Channel) initialStatus() model.Status {
	if c == ChannelAdmin {
		return model.StatusConfirmed
	}
	return model.StatusPending
}

// Submit validates and stores a booking. The gates run in order and the first failure is
// returned: input, service, past date, business hours, then a conflict check against a fresh
// read made under the schedule lock in the same transaction as the insert.
//
// A request carrying an idempotency key that was already used returns the original reservation
// without re-running the service and time gates.
func (s *Service) Submit(ctx context.Context, req BookingRequest, ch Channel, actor string) (model.Reservation, error) {
	in, err := ValidateBooking(req, s.cfg.PhoneRegion)
	if err != nil {
		return model.Reservation{}, err
	}
	if actor == "" {
		actor = in.Client.Email
	}
	key := strings.TrimSpace(req.IdempotencyKey)

	var created model.Reservation
	replayed := false
	err = s.store.InTx(ctx, func(q Queries) error {
		if err := q.LockSchedule(ctx); err != nil {
			return internal("lock schedule", err)
		}
		if key != "" {
			id, err := q.IdempotentReservation(ctx, key)
			switch {
			case err == nil:
				created, err = getReservation(ctx, q, id, false)
				replayed = true
				return err
			case !errors.Is(err, ErrNotFound):
				return internal("load idempotency key", err)
			}
		}

		svc, err := resolveService(ctx, q, in.ServiceID)
		if err != nil {
			return err
		}
		start := in.StartAt.In(s.cfg.Location)
		end := start.Add(svc.Duration())
		if err := s.checkWindow(ctx, q, start, svc.Duration()); err != nil {
			return err
		}
		if err := s.checkFree(ctx, q, start, end, ""); err != nil {
			return err
		}

		now := s.now()
		created = model.Reservation{
			ID:          uuid.NewString(),
			ClientName:  in.Client.Name,
			ClientEmail: in.Client.Email,
			ClientPhone: in.Client.Phone,
			ServiceID:   svc.ID,
			StartAt:     start,
			EndAt:       end,
			Status:      ch.initialStatus(),
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := q.InsertReservation(ctx, created); err != nil {
			if errors.Is(err, ErrConflict) {
				return slotTaken()
			}
			return internal("insert reservation", err)
		}

		entry := s.historyEntry(created.ID, model.ActionCreated, fmt.Sprintf("booked %s via %s channel", svc.Name, ch), actor)
		if err := q.AppendHistory(ctx, entry); err != nil {
			return internal("append history", err)
		}
		created.History = []model.HistoryEntry{entry}

		if key != "" {
			if err := q.SaveIdempotencyKey(ctx, key, created.ID); err != nil {
				return internal("save idempotency key", err)
			}
		}

		kinds := []NotificationKind{NotifyConfirmation}
		if ch == ChannelPublic {
			kinds = append(kinds, NotifyAdminNotice)
		}
		s.notify(ctx, q, created, svc.Name, "", kinds...)
		s.scheduleReminders(ctx, q, created)
		return nil
	})
	if err != nil {
		return model.Reservation{}, domainError("submit booking", err)
	}

	if replayed {
		s.logger.Info("booking replayed", "reservation_id", created.ID, "idempotency_key", key)
	} else {
		s.logger.Info("booking created", "reservation_id", created.ID, "service_id", created.ServiceID,
			"start_at", created.StartAt, "status", created.Status, "channel", string(ch))
	}
	return created, nil
}
