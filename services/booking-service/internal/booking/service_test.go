package booking

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// Monday 2024-12-16 08:00 UTC.
var testNow = time.Date(2024, 12, 16, 8, 0, 0, 0, time.UTC)

const massageID = "svc-massage"

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	store.services[massageID] = model.Service{ID: massageID, Name: "Relaxing massage", DurationMinutes: 60, Active: true}
	store.services["svc-old"] = model.Service{ID: "svc-old", Name: "Hot stones", DurationMinutes: 90, Active: false}
	for day := 1; day <= 5; day++ {
		store.weekly[day] = model.WeeklyDay{DayOfWeek: day, Active: true, OpenMinute: 9 * 60, CloseMinute: 18 * 60}
	}
	store.weekly[6] = model.WeeklyDay{DayOfWeek: 6, Active: true, OpenMinute: 10 * 60, CloseMinute: 14 * 60}
	store.weekly[0] = model.WeeklyDay{DayOfWeek: 0, Active: false}

	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		Location:        time.UTC,
		PhoneRegion:     "US",
		AdminEmail:      "owner@spa.example",
		ReminderOffsets: []time.Duration{24 * time.Hour, time.Hour},
	}).WithClock(func() time.Time { return testNow })
	return svc, store
}

func request(start string) BookingRequest {
	return BookingRequest{
		ClientName:  "Ana Gomez",
		ClientEmail: "ana@example.com",
		ClientPhone: "+1 201 555 0123",
		ServiceID:   massageID,
		StartAt:     start,
	}
}

func expectKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s, got %s (%v)", want, got, err)
	}
}

func TestSubmit_CreatesPendingWithHistoryAndNotifications(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.Submit(context.Background(), request("2024-12-17T10:00:00Z"), ChannelPublic, "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Fatalf("expected PENDING, got %s", res.Status)
	}
	if !res.EndAt.Equal(res.StartAt.Add(time.Hour)) {
		t.Fatalf("expected end = start + duration, got %s", res.EndAt)
	}
	if res.ClientPhone != "+12015550123" {
		t.Fatalf("expected E.164 phone, got %q", res.ClientPhone)
	}
	if len(res.History) != 1 || res.History[0].Action != model.ActionCreated || res.History[0].Actor != "ana@example.com" {
		t.Fatalf("unexpected history %+v", res.History)
	}

	notes := store.eventsOf(TopicNotificationRequested)
	var kinds []string
	for _, e := range notes {
		var p NotificationRequested
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		kinds = append(kinds, p.Kind+":"+p.Recipient)
	}
	slices.Sort(kinds)
	if !slices.Equal(kinds, []string{"adminNotice:owner@spa.example", "confirmation:ana@example.com"}) {
		t.Fatalf("unexpected notifications %v", kinds)
	}
	if got := len(store.eventsOf(TopicReminderRequested)); got != 2 {
		t.Fatalf("expected 2 reminder requests, got %d", got)
	}
}

func TestSubmit_AdminChannelConfirms(t *testing.T) {
	svc, store := newTestService(t)
	res, err := svc.Submit(context.Background(), request("2024-12-17T10:00:00Z"), ChannelAdmin, "admin-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if res.Status != model.StatusConfirmed || res.History[0].Actor != "admin-1" {
		t.Fatalf("unexpected reservation %+v", res)
	}
	if got := len(store.eventsOf(TopicNotificationRequested)); got != 1 {
		t.Fatalf("expected only the client confirmation, got %d", got)
	}
}

func TestSubmit_Gates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, request("2024-12-17T15:00:00Z"), ChannelPublic, ""); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	cases := []struct {
		name string
		req  func() BookingRequest
		want Kind
	}{
		{"bad email", func() BookingRequest { r := request("2024-12-17T10:00:00Z"); r.ClientEmail = "nope"; return r }, KindInvalidInput},
		{"bad phone", func() BookingRequest { r := request("2024-12-17T10:00:00Z"); r.ClientPhone = "12"; return r }, KindInvalidInput},
		{"bad time", func() BookingRequest { return request("tomorrow at ten") }, KindInvalidInput},
		{"unknown service", func() BookingRequest { r := request("2024-12-17T10:00:00Z"); r.ServiceID = "nope"; return r }, KindServiceNotFound},
		{"inactive service", func() BookingRequest { r := request("2024-12-17T10:00:00Z"); r.ServiceID = "svc-old"; return r }, KindServiceInactive},
		{"past", func() BookingRequest { return request("2024-12-16T07:00:00Z") }, KindPastDate},
		{"now", func() BookingRequest { return request("2024-12-16T08:00:00Z") }, KindPastDate},
		{"before opening", func() BookingRequest { return request("2024-12-17T08:30:00Z") }, KindOutsideBusinessHours},
		{"runs past closing", func() BookingRequest { return request("2024-12-17T17:30:00Z") }, KindOutsideBusinessHours},
		{"closed day", func() BookingRequest { return request("2024-12-22T10:00:00Z") }, KindOutsideBusinessHours},
		{"overlap", func() BookingRequest { return request("2024-12-17T14:30:00Z") }, KindSlotUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.req(), ChannelPublic, "")
			expectKind(t, err, tc.want)
		})
	}

	// Touching the existing 15:00-16:00 booking on either side is allowed.
	for _, start := range []string{"2024-12-17T14:00:00Z", "2024-12-17T16:00:00Z"} {
		if _, err := svc.Submit(ctx, request(start), ChannelPublic, ""); err != nil {
			t.Fatalf("adjacent booking at %s failed: %v", start, err)
		}
	}
}

func TestSubmit_OutsideHoursNamesWindow(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), request("2024-12-17T19:00:00Z"), ChannelPublic, "")
	expectKind(t, err, KindOutsideBusinessHours)
	want := "the requested time is outside business hours (Monday–Friday 09:00–18:00, Saturday 10:00–14:00)"
	if got := MessageOf(err); got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestSubmit_BlockedInterval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SaveBlockedInterval(ctx, BlockRequest{
		StartAt: "2024-12-17T12:00:00Z", EndAt: "2024-12-17T13:00:00Z", Reason: "Maintenance",
	}, "", "admin"); err != nil {
		t.Fatalf("SaveBlockedInterval failed: %v", err)
	}
	_, err := svc.Submit(ctx, request("2024-12-17T11:30:00Z"), ChannelPublic, "")
	expectKind(t, err, KindSlotUnavailable)
	if _, err := svc.Submit(ctx, request("2024-12-17T11:00:00Z"), ChannelPublic, ""); err != nil {
		t.Fatalf("booking ending at block start should succeed: %v", err)
	}
}

func TestSubmit_ConcurrentSameSlot(t *testing.T) {
	svc, store := newTestService(t)

	const clients = 8
	var wg sync.WaitGroup
	errs := make([]error, clients)
	start := make(chan struct{})
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Submit(context.Background(), request("2024-12-17T10:00:00Z"), ChannelPublic, "")
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		expectKind(t, err, KindSlotUnavailable)
	}
	if ok != 1 {
		t.Fatalf("expected exactly one success, got %d", ok)
	}
	if n := len(store.reservations); n != 1 {
		t.Fatalf("expected 1 stored reservation, got %d", n)
	}
}

func TestSubmit_StorageConflictMapsToSlotUnavailable(t *testing.T) {
	svc, store := newTestService(t)
	store.beforeInsert = func() {
		id := uuid.NewString()
		store.reservations[id] = model.Reservation{
			ID: id, Status: model.StatusConfirmed,
			StartAt: time.Date(2024, 12, 17, 10, 30, 0, 0, time.UTC),
			EndAt:   time.Date(2024, 12, 17, 11, 30, 0, 0, time.UTC),
		}
	}
	_, err := svc.Submit(context.Background(), request("2024-12-17T10:00:00Z"), ChannelPublic, "")
	expectKind(t, err, KindSlotUnavailable)
}

func TestSubmit_NotificationFailureDoesNotFailBooking(t *testing.T) {
	svc, store := newTestService(t)
	store.failEnqueue = true
	res, err := svc.Submit(context.Background(), request("2024-12-17T10:00:00Z"), ChannelPublic, "")
	if err != nil {
		t.Fatalf("booking must succeed when notifications fail: %v", err)
	}
	if _, ok := store.reservations[res.ID]; !ok {
		t.Fatal("reservation not stored")
	}
}

func TestSubmit_IdempotencyKeyReplays(t *testing.T) {
	svc, store := newTestService(t)
	req := request("2024-12-17T10:00:00Z")
	req.IdempotencyKey = "key-1"

	first, err := svc.Submit(context.Background(), req, ChannelPublic, "")
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	second, err := svc.Submit(context.Background(), req, ChannelPublic, "")
	if err != nil {
		t.Fatalf("replayed submit failed: %v", err)
	}
	if first.ID != second.ID || len(store.reservations) != 1 {
		t.Fatalf("expected replay of %s, got %s (%d stored)", first.ID, second.ID, len(store.reservations))
	}
}

func TestSubmit_IdempotencyKeyReplaysAfterGatesChange(t *testing.T) {
	svc, store := newTestService(t)
	req := request("2024-12-17T10:00:00Z")
	req.IdempotencyKey = "key-2"

	first, err := svc.Submit(context.Background(), req, ChannelPublic, "")
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	retired := store.services[massageID]
	retired.Active = false
	store.services[massageID] = retired
	svc.WithClock(func() time.Time { return time.Date(2024, 12, 17, 12, 0, 0, 0, time.UTC) })

	second, err := svc.Submit(context.Background(), req, ChannelPublic, "")
	if err != nil {
		t.Fatalf("replayed submit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected replay of %s, got %s", first.ID, second.ID)
	}

	req.IdempotencyKey = "key-3"
	_, err = svc.Submit(context.Background(), req, ChannelPublic, "")
	expectKind(t, err, KindServiceInactive)
}

// Every listed slot must be accepted when booked straight away.
func TestSlotsAreBookable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Submit(ctx, request("2024-12-17T13:00:00Z"), ChannelPublic, ""); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	slots, err := svc.Slots(ctx, "2024-12-17", massageID)
	if err != nil {
		t.Fatalf("Slots failed: %v", err)
	}
	if slices.Contains(slots, "12:30") || slices.Contains(slots, "13:00") || !slices.Contains(slots, "12:00") {
		t.Fatalf("unexpected slots %v", slots)
	}
	for _, slot := range slots {
		fresh, _ := newTestService(t)
		if _, err := fresh.Submit(ctx, request("2024-12-17T13:00:00Z"), ChannelPublic, ""); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if _, err := fresh.Submit(ctx, request("2024-12-17T"+slot+":00Z"), ChannelPublic, ""); err != nil {
			t.Fatalf("slot %s was listed but rejected: %v", slot, err)
		}
	}
}
