package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/libs/httpx"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/metrics"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, booking.ChannelAdmin, actorFromHeader(r))
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.svc.Location()
	var f booking.ReservationFilter
	var err error
	if f.From, err = parseBound(q.Get("from"), loc, false); err != nil {
		writeError(w, r, h.logger, invalidQuery("from"))
		return
	}
	if f.To, err = parseBound(q.Get("to"), loc, true); err != nil {
		writeError(w, r, h.logger, invalidQuery("to"))
		return
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st := model.Status(strings.ToUpper(raw))
		f.Status = &st
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if f.Limit, err = strconv.Atoi(raw); err != nil {
			writeError(w, r, h.logger, &booking.Error{Kind: booking.KindInvalidInput, Message: "limit: must be a number"})
			return
		}
	}

	list, err := h.svc.ListReservations(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	items := make([]reservationView, 0, len(list))
	for _, res := range list {
		items = append(items, toReservationView(res, loc))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"reservations": items})
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request, id string) {
	res, err := h.svc.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toReservationView(res, h.svc.Location()))
}

func (h *Handler) PatchReservation(w http.ResponseWriter, r *http.Request, id string) {
	var req booking.PatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.svc.Patch(r.Context(), id, req, actorFromHeader(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Status != nil {
		metrics.IncStatusChange(string(res.Status))
	}
	httpx.WriteJSON(w, http.StatusOK, toReservationView(res, h.svc.Location()))
}

func (h *Handler) BulkReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req booking.BulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	results, err := h.svc.Bulk(r.Context(), req, actorFromHeader(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	failed := 0
	for _, res := range results {
		switch {
		case !res.OK:
			failed++
		case booking.BulkAction(strings.ToLower(req.Action)) != booking.BulkRemind:
			metrics.IncStatusChange(res.Status)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"results":   results,
		"succeeded": len(results) - failed,
		"failed":    failed,
	})
}

func (h *Handler) ListBlockedIntervals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.svc.Location()
	var f booking.BlockFilter
	var err error
	if f.From, err = parseBound(q.Get("from"), loc, false); err != nil {
		writeError(w, r, h.logger, invalidQuery("from"))
		return
	}
	if f.To, err = parseBound(q.Get("to"), loc, true); err != nil {
		writeError(w, r, h.logger, invalidQuery("to"))
		return
	}
	f.ActiveOnly = q.Get("active") == "true"

	list, err := h.svc.ListBlockedIntervals(r.Context(), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	items := make([]blockView, 0, len(list))
	for _, b := range list {
		items = append(items, toBlockView(b, loc))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"blockedIntervals": items})
}

func (h *Handler) GetBlockedInterval(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.svc.GetBlockedInterval(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBlockView(b, h.svc.Location()))
}

// SaveBlockedInterval creates a blocked interval when id is empty and replaces it otherwise.
func (h *Handler) SaveBlockedInterval(w http.ResponseWriter, r *http.Request, id string) {
	var req booking.BlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	b, err := h.svc.SaveBlockedInterval(r.Context(), req, id, actorFromHeader(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, toBlockView(b, h.svc.Location()))
}

func (h *Handler) DeleteBlockedInterval(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.DeleteBlockedInterval(r.Context(), id, actorFromHeader(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateWeeklyDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	day, err := strconv.Atoi(pathID(r, "/api/v1/admin/weekly-availability/"))
	if err != nil {
		writeError(w, r, h.logger, &booking.Error{Kind: booking.KindInvalidInput, Message: "dayOfWeek: must be a number between 0 and 6"})
		return
	}
	var req booking.WeeklyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	wd, err := h.svc.UpdateWeeklyDay(r.Context(), day, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWeeklyDayView(wd))
}

// parseBound reads an RFC 3339 timestamp or a YYYY-MM-DD date in loc. A date used as an upper
// bound covers the whole day.
func parseBound(raw string, loc *time.Location, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return nil, err
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

func invalidQuery(name string) error {
	return &booking.Error{Kind: booking.KindInvalidInput, Message: name + ": must be an RFC 3339 timestamp or YYYY-MM-DD date"}
}
