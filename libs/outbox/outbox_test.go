package outbox

import (
	"context"
	"testing"

	"github.com/mike7019/Masajes-sub000/libs/kafkax"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("reservation", "r-1", "booking.notification.requested.v1", map[string]string{"kind": "confirmation"})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if string(evt.Payload) != `{"kind":"confirmation"}` {
		t.Fatalf("unexpected payload %s", evt.Payload)
	}
	if _, err := NewEvent("reservation", "r-1", "x", make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}

func TestToMessage(t *testing.T) {
	msg := ToMessage(context.Background(), Record{
		EventID:     "e-1",
		AggregateID: "r-1",
		EventType:   "booking.reminder.requested.v1",
		Payload:     []byte(`{}`),
	})
	if msg.Topic != "booking.reminder.requested.v1" || string(msg.Key) != "r-1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "e-1" || meta.EventType != "booking.reminder.requested.v1" || meta.AggregateID != "r-1" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}
