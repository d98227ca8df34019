package bookingrpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Reservation is the subset of reservation fields exposed over gRPC.
type Reservation struct {
	ID          string
	Status      string
	ServiceID   string
	ServiceName string
	ClientName  string
	ClientEmail string
	StartAt     time.Time
	EndAt       time.Time
}

// Blocking reports whether the reservation still holds its slot.
func (r Reservation) Blocking() bool {
	return r.Status == "PENDING" || r.Status == "CONFIRMED"
}

func (r Reservation) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":           r.ID,
		"status":       r.Status,
		"service_id":   r.ServiceID,
		"service_name": r.ServiceName,
		"client_name":  r.ClientName,
		"client_email": r.ClientEmail,
		"start_at":     r.StartAt.UTC().Format(time.RFC3339),
		"end_at":       r.EndAt.UTC().Format(time.RFC3339),
	})
}

func reservationFromStruct(s *structpb.Struct) (Reservation, error) {
	f := s.GetFields()
	r := Reservation{
		ID:          f["id"].GetStringValue(),
		Status:      f["status"].GetStringValue(),
		ServiceID:   f["service_id"].GetStringValue(),
		ServiceName: f["service_name"].GetStringValue(),
		ClientName:  f["client_name"].GetStringValue(),
		ClientEmail: f["client_email"].GetStringValue(),
	}
	var err error
	if r.StartAt, err = time.Parse(time.RFC3339, f["start_at"].GetStringValue()); err != nil {
		return Reservation{}, fmt.Errorf("start_at: %w", err)
	}
	if r.EndAt, err = time.Parse(time.RFC3339, f["end_at"].GetStringValue()); err != nil {
		return Reservation{}, fmt.Errorf("end_at: %w", err)
	}
	return r, nil
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetReservation(ctx context.Context, id string) (Reservation, error) {
	in, err := structpb.NewStruct(map[string]any{"id": id})
	if err != nil {
		return Reservation{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetReservationMethod, in, out); err != nil {
		return Reservation{}, err
	}
	return reservationFromStruct(out)
}

func (c *Client) ListSlots(ctx context.Context, date, serviceID string) ([]string, error) {
	in, err := structpb.NewStruct(map[string]any{"date": date, "service_id": serviceID})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListSlotsMethod, in, out); err != nil {
		return nil, err
	}
	values := out.GetFields()["slots"].GetListValue().GetValues()
	slots := make([]string, 0, len(values))
	for _, v := range values {
		slots = append(slots, v.GetStringValue())
	}
	return slots, nil
}
