package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// Service is the booking API the HTTP layer drives.
type Service interface {
	Location() *time.Location
	Slots(ctx context.Context, date, serviceID string) ([]string, error)
	ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error)
	BusinessHours(ctx context.Context) ([]model.WeeklyDay, string, error)
	UpdateWeeklyDay(ctx context.Context, day int, req booking.WeeklyRequest) (model.WeeklyDay, error)
	Submit(ctx context.Context, req booking.BookingRequest, ch booking.Channel, actor string) (model.Reservation, error)
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	ListReservations(ctx context.Context, f booking.ReservationFilter) ([]model.Reservation, error)
	Patch(ctx context.Context, id string, req booking.PatchRequest, actor string) (model.Reservation, error)
	Bulk(ctx context.Context, req booking.BulkRequest, actor string) ([]booking.BulkResult, error)
	SaveBlockedInterval(ctx context.Context, req booking.BlockRequest, existingID, actor string) (model.BlockedInterval, error)
	GetBlockedInterval(ctx context.Context, id string) (model.BlockedInterval, error)
	ListBlockedIntervals(ctx context.Context, f booking.BlockFilter) ([]model.BlockedInterval, error)
	DeleteBlockedInterval(ctx context.Context, id, actor string) error
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the public and admin endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/public/availability", h.Availability)
	mux.HandleFunc("/api/v1/public/services", h.Services)
	mux.HandleFunc("/api/v1/public/business-hours", h.BusinessHours)
	mux.HandleFunc("/api/v1/public/bookings", h.CreateBooking)

	mux.HandleFunc("/api/v1/admin/reservations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListReservations(w, r)
		case http.MethodPost:
			h.CreateReservation(w, r)
		default:
			methodNotAllowed(w)
		}
	})
	mux.HandleFunc("/api/v1/admin/reservations/", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r, "/api/v1/admin/reservations/")
		switch {
		case id == "bulk":
			h.BulkReservations(w, r)
		case id == "":
			writeError(w, r, h.logger, notFound())
		case r.Method == http.MethodGet:
			h.GetReservation(w, r, id)
		case r.Method == http.MethodPatch:
			h.PatchReservation(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/v1/admin/blocked-intervals", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListBlockedIntervals(w, r)
		case http.MethodPost:
			h.SaveBlockedInterval(w, r, "")
		default:
			methodNotAllowed(w)
		}
	})
	mux.HandleFunc("/api/v1/admin/blocked-intervals/", func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r, "/api/v1/admin/blocked-intervals/")
		if id == "" {
			writeError(w, r, h.logger, notFound())
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetBlockedInterval(w, r, id)
		case http.MethodPut:
			h.SaveBlockedInterval(w, r, id)
		case http.MethodDelete:
			h.DeleteBlockedInterval(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/v1/admin/weekly-availability", h.BusinessHours)
	mux.HandleFunc("/api/v1/admin/weekly-availability/", h.UpdateWeeklyDay)
}

func pathID(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// actorFromHeader returns the authenticated admin forwarded by the gateway.
func actorFromHeader(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-User-Id")); v != "" {
		return v
	}
	return "admin"
}

func methodNotAllowed(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

func notFound() error {
	return &booking.Error{Kind: booking.KindNotFound, Message: "not found"}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &booking.Error{Kind: booking.KindInvalidInput, Message: "request body is required"}
		}
		return &booking.Error{Kind: booking.KindInvalidInput, Message: "invalid json body", Err: err}
	}
	return nil
}

var statusByKind = map[booking.Kind]int{
	booking.KindInvalidInput:         http.StatusBadRequest,
	booking.KindInvalidRange:         http.StatusBadRequest,
	booking.KindServiceNotFound:      http.StatusNotFound,
	booking.KindNotFound:             http.StatusNotFound,
	booking.KindServiceInactive:      http.StatusConflict,
	booking.KindPastDate:             http.StatusConflict,
	booking.KindOutsideBusinessHours: http.StatusConflict,
	booking.KindSlotUnavailable:      http.StatusConflict,
	booking.KindOverlappingBlock:     http.StatusConflict,
	booking.KindInvalidTransition:    http.StatusConflict,
}

func statusFor(kind booking.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := booking.KindOf(err)
	if kind == booking.KindInternal {
		logger.Error("request failed", "err", err, "path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()))
	}
	httpx.WriteError(w, statusFor(kind), string(kind), booking.MessageOf(err))
}
