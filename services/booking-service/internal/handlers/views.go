package handlers

import (
	"time"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/availability"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

type serviceView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
	Active          bool   `json:"active"`
}

type weeklyDayView struct {
	DayOfWeek int    `json:"dayOfWeek"`
	Day       string `json:"day"`
	Active    bool   `json:"active"`
	OpenTime  string `json:"openTime,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
}

type historyView struct {
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	Actor     string `json:"actor,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type reservationView struct {
	ID          string        `json:"id"`
	ClientName  string        `json:"clientName"`
	ClientEmail string        `json:"clientEmail"`
	ClientPhone string        `json:"clientPhone"`
	ServiceID   string        `json:"serviceId"`
	StartAt     string        `json:"startAt"`
	EndAt       string        `json:"endAt"`
	Status      string        `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
	History     []historyView `json:"history,omitempty"`
}

type blockView struct {
	ID          string `json:"id"`
	StartAt     string `json:"startAt"`
	EndAt       string `json:"endAt"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

func toServiceView(s model.Service) serviceView {
	return serviceView{
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
		Active:          s.Active,
	}
}

func toWeeklyDayView(d model.WeeklyDay) weeklyDayView {
	v := weeklyDayView{DayOfWeek: d.DayOfWeek, Day: d.Weekday().String(), Active: d.Active}
	if d.Active {
		v.OpenTime = availability.FormatClock(d.OpenMinute)
		v.CloseTime = availability.FormatClock(d.CloseMinute)
	}
	return v
}

func toReservationView(r model.Reservation, loc *time.Location) reservationView {
	v := reservationView{
		ID:          r.ID,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		ClientPhone: r.ClientPhone,
		ServiceID:   r.ServiceID,
		StartAt:     formatTime(r.StartAt, loc),
		EndAt:       formatTime(r.EndAt, loc),
		Status:      string(r.Status),
		Notes:       r.Notes,
		CreatedAt:   formatTime(r.CreatedAt, loc),
		UpdatedAt:   formatTime(r.UpdatedAt, loc),
	}
	for _, e := range r.History {
		v.History = append(v.History, historyView{
			Action:    e.Action,
			Detail:    e.Detail,
			Actor:     e.Actor,
			CreatedAt: formatTime(e.CreatedAt, loc),
		})
	}
	return v
}

func toBlockView(b model.BlockedInterval, loc *time.Location) blockView {
	return blockView{
		ID:          b.ID,
		StartAt:     formatTime(b.StartAt, loc),
		EndAt:       formatTime(b.EndAt, loc),
		Reason:      b.Reason,
		Description: b.Description,
		Active:      b.Active,
		CreatedAt:   formatTime(b.CreatedAt, loc),
		UpdatedAt:   formatTime(b.UpdatedAt, loc),
	}
}
