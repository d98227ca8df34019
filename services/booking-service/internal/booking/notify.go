package booking

import (
	"context"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/outbox"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

const (
	TopicNotificationRequested = "booking.notification.requested.v1"
	TopicReminderRequested     = "booking.reminder.requested.v1"
)

type NotificationKind string

const (
	NotifyConfirmation NotificationKind = "confirmation"
	NotifyAdminNotice  NotificationKind = "adminNotice"
	NotifyCancellation NotificationKind = "cancellation"
	NotifyReminder     NotificationKind = "reminder"
)

// NotificationRequested asks the notification service to contact Recipient about a reservation.
type NotificationRequested struct {
	ReservationID string    `json:"reservation_id"`
	Kind          string    `json:"kind"`
	Recipient     string    `json:"recipient"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone,omitempty"`
	ServiceName   string    `json:"service_name"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Reason        string    `json:"reason,omitempty"`
}

// ReminderRequested asks the scheduler to send a reminder at RemindAt for the given start time.
type ReminderRequested struct {
	ReservationID string    `json:"reservation_id"`
	RemindAt      time.Time `json:"remind_at"`
	StartAt       time.Time `json:"start_at"`
}

// notify enqueues one notification per kind. Failures are logged and never fail the caller.
func (s *Service) notify(ctx context.Context, q Queries, r model.Reservation, serviceName, reason string, kinds ...NotificationKind) {
	for _, kind := range kinds {
		recipient := r.ClientEmail
		if kind == NotifyAdminNotice {
			if s.cfg.AdminEmail == "" {
				continue
			}
			recipient = s.cfg.AdminEmail
		}
		evt, err := outbox.NewEvent("reservation", r.ID, TopicNotificationRequested, NotificationRequested{
			ReservationID: r.ID,
			Kind:          string(kind),
			Recipient:     recipient,
			ClientName:    r.ClientName,
			ClientPhone:   r.ClientPhone,
			ServiceName:   serviceName,
			Status:        string(r.Status),
			StartAt:       r.StartAt.UTC(),
			EndAt:         r.EndAt.UTC(),
			Reason:        reason,
		})
		if err == nil {
			err = q.Enqueue(ctx, evt)
		}
		if err != nil {
			s.logger.Warn("notification enqueue failed", "err", err, "reservation_id", r.ID, "kind", string(kind))
		}
	}
}

// scheduleReminders enqueues a reminder request for every configured offset still in the future.
func (s *Service) scheduleReminders(ctx context.Context, q Queries, r model.Reservation) {
	now := s.now()
	for _, offset := range s.cfg.ReminderOffsets {
		remindAt := r.StartAt.Add(-offset)
		if !remindAt.After(now) {
			continue
		}
		evt, err := outbox.NewEvent("reservation", r.ID, TopicReminderRequested, ReminderRequested{
			ReservationID: r.ID,
			RemindAt:      remindAt.UTC(),
			StartAt:       r.StartAt.UTC(),
		})
		if err == nil {
			err = q.Enqueue(ctx, evt)
		}
		if err != nil {
			s.logger.Warn("reminder enqueue failed", "err", err, "reservation_id", r.ID, "remind_at", remindAt)
		}
	}
}

func (s *Service) serviceName(ctx context.Context, q Queries, id string) string {
	svc, err := q.GetService(ctx, id)
	if err != nil {
		s.logger.Warn("service lookup for notification failed", "err", err, "service_id", id)
		return ""
	}
	return svc.Name
}
