package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// Patch applies a partial update: client detail, notes and start time edits first, then an
// optional status transition, all in one transaction.
func (s *Service) Patch(ctx context.Context, id string, req PatchRequest, actor string) (model.Reservation, error) {
	in, err := ValidatePatch(req, s.cfg.PhoneRegion)
	if err != nil {
		return model.Reservation{}, err
	}
	return s.apply(ctx, id, in, actor)
}

// ChangeStatus moves a reservation along the status state machine.
func (s *Service) ChangeStatus(ctx context.Context, id string, to model.Status, reason, actor string) (model.Reservation, error) {
	if !to.Valid() {
		return model.Reservation{}, newError(KindInvalidInput, "status: unknown value %q", to)
	}
	return s.apply(ctx, id, PatchInput{Status: &to, Reason: strings.TrimSpace(reason)}, actor)
}

// EditReservation changes client details, notes or start time of a PENDING or CONFIRMED reservation.
func (s *Service) EditReservation(ctx context.Context, id string, req PatchRequest, actor string) (model.Reservation, error) {
	req.Status = nil
	return s.Patch(ctx, id, req, actor)
}

func (s *Service) apply(ctx context.Context, id string, in PatchInput, actor string) (model.Reservation, error) {
	var out model.Reservation
	var from model.Status
	err := s.store.InTx(ctx, func(q Queries) error {
		res, err := getReservation(ctx, q, id, true)
		if err != nil {
			return err
		}
		from = res.Status
		var entries []model.HistoryEntry

		rescheduled := false
		if in.hasEdits() {
			entry, moved, err := s.applyEdits(ctx, q, &res, in, actor)
			if err != nil {
				return err
			}
			if entry != nil {
				entries = append(entries, *entry)
			}
			rescheduled = moved
		}

		if in.Status != nil {
			if err := Transition(res.Status, *in.Status); err != nil {
				return err
			}
			res.Status = *in.Status
			entries = append(entries, s.historyEntry(res.ID, actionFor(res.Status), in.Reason, actor))
		}

		if len(entries) == 0 {
			out = res
			return nil
		}
		res.UpdatedAt = s.now()
		if err := q.UpdateReservation(ctx, res); err != nil {
			if errors.Is(err, ErrConflict) {
				return slotTaken()
			}
			return internal("update reservation", err)
		}
		for _, e := range entries {
			if err := q.AppendHistory(ctx, e); err != nil {
				return internal("append history", err)
			}
		}

		name := s.serviceName(ctx, q, res.ServiceID)
		switch {
		case in.Status != nil && res.Status == model.StatusCancelled:
			s.notify(ctx, q, res, name, in.Reason, NotifyCancellation)
		case in.Status != nil && res.Status == model.StatusConfirmed:
			s.notify(ctx, q, res, name, "", NotifyConfirmation)
			s.scheduleReminders(ctx, q, res)
		case rescheduled:
			s.notify(ctx, q, res, name, "", NotifyConfirmation)
			s.scheduleReminders(ctx, q, res)
		}

		res.History, err = q.History(ctx, res.ID)
		if err != nil {
			return internal("load history", err)
		}
		out = res
		return nil
	})
	if err != nil {
		return model.Reservation{}, domainError("update reservation", err)
	}
	if in.Status != nil {
		s.logger.Info("reservation status changed", "reservation_id", out.ID, "from", string(from), "to", string(out.Status), "actor", actor)
	}
	return out, nil
}

// applyEdits mutates res in place and returns the history entry describing the change, if any.
func (s *Service) applyEdits(ctx context.Context, q Queries, res *model.Reservation, in PatchInput, actor string) (*model.HistoryEntry, bool, error) {
	if !Editable(res.Status) {
		return nil, false, newError(KindInvalidTransition, "a %s reservation can no longer be edited", res.Status)
	}

	var changed []string
	set := func(field string, dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = append(changed, field)
		}
	}
	set("clientName", &res.ClientName, in.ClientName)
	set("clientEmail", &res.ClientEmail, in.ClientEmail)
	set("clientPhone", &res.ClientPhone, in.ClientPhone)
	set("notes", &res.Notes, in.Notes)

	moved := false
	var detail []string
	if in.StartAt != nil && !in.StartAt.Equal(res.StartAt) {
		svc, err := q.GetService(ctx, res.ServiceID)
		if err != nil {
			return nil, false, internal("load service", err)
		}
		start := in.StartAt.In(s.cfg.Location)
		end := start.Add(svc.Duration())
		if err := s.checkWindow(ctx, q, start, svc.Duration()); err != nil {
			return nil, false, err
		}
		if err := q.LockSchedule(ctx); err != nil {
			return nil, false, internal("lock schedule", err)
		}
		if err := s.checkFree(ctx, q, start, end, res.ID); err != nil {
			return nil, false, err
		}
		detail = append(detail, fmt.Sprintf("moved from %s to %s",
			res.StartAt.In(s.cfg.Location).Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04")))
		res.StartAt, res.EndAt = start, end
		moved = true
	}

	if len(changed) == 0 && !moved {
		return nil, false, nil
	}
	if len(changed) > 0 {
		detail = append(detail, "changed "+strings.Join(changed, ", "))
	}
	if in.Reason != "" {
		detail = append(detail, in.Reason)
	}
	action := model.ActionEdited
	if moved {
		action = model.ActionRescheduled
	}
	entry := s.historyEntry(res.ID, action, strings.Join(detail, "; "), actor)
	return &entry, moved, nil
}
