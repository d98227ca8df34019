package model

import "time"

// WeeklyDay is the opening window for one weekday. Times are minutes since local midnight.
type WeeklyDay struct {
	DayOfWeek   int
	Active      bool
	OpenMinute  int
	CloseMinute int
}

func (d WeeklyDay) Weekday() time.Weekday {
	return time.Weekday(d.DayOfWeek)
}

type BlockedInterval struct {
	ID          string
	StartAt     time.Time
	EndAt       time.Time
	Reason      string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
