package availability

import (
	"time"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// SlotStep is the spacing between candidate start times.
const SlotStep = 30 * time.Minute

type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// GenerateSlots returns the bookable start times on date, formatted HH:MM in ascending order.
//
// date is a calendar day in the business location; only its year, month and day are used.
// reservations and blocks should hold the occupied intervals touching that day. Candidates start
// at the opening time and advance by SlotStep; a candidate survives when it ends no later than
// closing, overlaps nothing busy and starts after now. Local times that do not exist on date
// are skipped.
func GenerateSlots(date time.Time, duration time.Duration, weekly []model.WeeklyDay, reservations, blocks []Interval, now time.Time) []string {
	if duration <= 0 {
		return []string{}
	}
	day, ok := DayFor(weekly, date.Weekday())
	if !ok || !day.Active || day.CloseMinute <= day.OpenMinute {
		return []string{}
	}

	durMin := int(duration / time.Minute)
	stepMin := int(SlotStep / time.Minute)
	slots := []string{}
	for offset := day.OpenMinute; offset+durMin <= day.CloseMinute; offset += stepMin {
		start := At(date, offset)
		if start.Hour()*60+start.Minute() != offset {
			// Wall clock skipped by a DST change.
			continue
		}
		end := start.Add(duration)
		if !start.After(now) {
			continue
		}
		if overlapsAny(start, end, reservations) || overlapsAny(start, end, blocks) {
			continue
		}
		slots = append(slots, FormatClock(offset))
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// At returns the instant minute minutes after midnight of date's calendar day, in date's location.
func At(date time.Time, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, date.Location())
}

// DayBounds returns [midnight, next midnight) for the calendar day of t in its location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
