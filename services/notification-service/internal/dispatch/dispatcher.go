package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/email"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/metrics"
	"github.com/mike7019/Masajes-sub000/services/notification-service/internal/storage"
	"github.com/segmentio/kafka-go"
)

// Request mirrors the booking.notification.requested.v1 payload.
type Request struct {
	ReservationID string    `json:"reservation_id"`
	Kind          string    `json:"kind"`
	Recipient     string    `json:"recipient"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	ServiceName   string    `json:"service_name"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Reason        string    `json:"reason"`
}

// Recorder stores delivery attempts.
type Recorder interface {
	Insert(ctx context.Context, n storage.Notification) error
}

type Config struct {
	BusinessName string
	Location     *time.Location
	// FailSuffix simulates delivery failures for recipients ending with it. Empty disables.
	FailSuffix string
}

type Dispatcher struct {
	sender   email.Sender
	recorder Recorder
	logger   *slog.Logger
	cfg      Config
}

func New(sender email.Sender, recorder Recorder, logger *slog.Logger, cfg Config) *Dispatcher {
	return &Dispatcher{sender: sender, recorder: recorder, logger: logger, cfg: cfg}
}

// Handle renders and sends one notification request and records the outcome. Malformed
// requests are dropped; only a failure to record the attempt is returned.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var req Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		d.logger.Error("invalid notification payload", "err", err, "topic", msg.Topic)
		return nil
	}
	if req.ReservationID == "" || req.Kind == "" || strings.TrimSpace(req.Recipient) == "" || req.StartAt.IsZero() {
		d.logger.Error("missing notification fields", "reservation_id", req.ReservationID, "kind", req.Kind)
		return nil
	}

	n := storage.Notification{
		ReservationID: req.ReservationID,
		Kind:          req.Kind,
		Recipient:     req.Recipient,
		Payload:       msg.Value,
		Status:        storage.StatusSent,
	}
	if err := d.deliver(ctx, req); err != nil {
		n.Status = storage.StatusFailed
		n.ErrorReason = err.Error()
		d.logger.Error("notification send failed", "err", err, "reservation_id", req.ReservationID, "kind", req.Kind)
	} else {
		n.ProviderID = d.sender.ProviderID()
	}
	metrics.IncDelivery(req.Kind, n.Status)

	if err := d.recorder.Insert(ctx, n); err != nil {
		d.logger.Error("failed to persist notification", "err", err)
		return err
	}
	d.logger.Info("notification processed", "reservation_id", req.ReservationID, "kind", req.Kind, "status", n.Status)
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, req Request) error {
	if d.cfg.FailSuffix != "" && strings.HasSuffix(req.Recipient, d.cfg.FailSuffix) {
		return errors.New("simulated failure")
	}
	m, err := email.Render(req.Kind, email.TemplateData{
		BusinessName: d.cfg.BusinessName,
		Recipient:    req.Recipient,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		ServiceName:  req.ServiceName,
		Status:       req.Status,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Reason:       req.Reason,
		Location:     d.cfg.Location,
	})
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, m)
}
