package model

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Blocking reports whether a reservation in this status occupies its time slot.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID          string
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceID   string
	StartAt     time.Time
	EndAt       time.Time
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	History     []HistoryEntry
}

// History actions.
const (
	ActionCreated     = "CREATED"
	ActionConfirmed   = "CONFIRMED"
	ActionCancelled   = "CANCELLED"
	ActionCompleted   = "COMPLETED"
	ActionEdited      = "EDITED"
	ActionRescheduled = "RESCHEDULED"
	ActionReminded    = "REMINDER_SENT"
)

type HistoryEntry struct {
	ID            string
	ReservationID string
	Action        string
	Detail        string
	Actor         string
	CreatedAt     time.Time
}
