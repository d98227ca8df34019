package handlers

import (
	"net/http"
	"strings"

	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/metrics"
)

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	date := q.Get("date")
	serviceID := q.Get("serviceId")
	if serviceID == "" {
		serviceID = q.Get("service_id")
	}
	slots, err := h.svc.Slots(r.Context(), date, serviceID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	metrics.ObserveSlots(len(slots))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"date":      strings.TrimSpace(date),
		"serviceId": strings.TrimSpace(serviceID),
		"slots":     slots,
	})
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	list, err := h.svc.ListServices(r.Context(), true)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	items := make([]serviceView, 0, len(list))
	for _, s := range list {
		items = append(items, toServiceView(s))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"services": items})
}

func (h *Handler) BusinessHours(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	weekly, summary, err := h.svc.BusinessHours(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	days := make([]weeklyDayView, 0, len(weekly))
	for _, d := range weekly {
		days = append(days, toWeeklyDayView(d))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"timezone": h.svc.Location().String(),
		"summary":  summary,
		"days":     days,
	})
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h.submit(w, r, booking.ChannelPublic, "")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, ch booking.Channel, actor string) {
	var req booking.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.IncSubmission(string(ch), string(booking.KindInvalidInput))
		writeError(w, r, h.logger, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.svc.Submit(r.Context(), req, ch, actor)
	if err != nil {
		metrics.IncSubmission(string(ch), string(booking.KindOf(err)))
		writeError(w, r, h.logger, err)
		return
	}
	metrics.IncSubmission(string(ch), "OK")
	httpx.WriteJSON(w, http.StatusCreated, toReservationView(res, h.svc.Location()))
}
