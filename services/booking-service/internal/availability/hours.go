package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

func DayFor(weekly []model.WeeklyDay, wd time.Weekday) (model.WeeklyDay, bool) {
	for _, d := range weekly {
		if d.DayOfWeek == int(wd) {
			return d, true
		}
	}
	return model.WeeklyDay{}, false
}

// WithinBusinessHours reports whether [start, start+duration) lies inside the opening window of
// start's weekday. start must already be in the business location.
func WithinBusinessHours(start time.Time, duration time.Duration, weekly []model.WeeklyDay) bool {
	day, ok := DayFor(weekly, start.Weekday())
	if !ok || !day.Active {
		return false
	}
	open := At(start, day.OpenMinute)
	closing := At(start, day.CloseMinute)
	return !start.Before(open) && !start.Add(duration).After(closing)
}

// ParseClock parses HH:MM into minutes since midnight. 24:00 is accepted as end of day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// week lists weekdays in the order they are presented to clients.
var week = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Summary renders the weekly hours for people, grouping consecutive days that share a window,
// e.g. "Monday–Friday 09:00–18:00, Saturday 10:00–14:00".
func Summary(weekly []model.WeeklyDay) string {
	type group struct {
		first, last time.Weekday
		open, close int
	}
	var groups []group
	prevOpen := false
	for _, wd := range week {
		day, ok := DayFor(weekly, wd)
		if !ok || !day.Active {
			prevOpen = false
			continue
		}
		if n := len(groups); prevOpen && groups[n-1].open == day.OpenMinute && groups[n-1].close == day.CloseMinute {
			groups[n-1].last = wd
			continue
		}
		groups = append(groups, group{first: wd, last: wd, open: day.OpenMinute, close: day.CloseMinute})
		prevOpen = true
	}
	if len(groups) == 0 {
		return "closed"
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		days := g.first.String()
		if g.last != g.first {
			days += "–" + g.last.String()
		}
		parts = append(parts, fmt.Sprintf("%s %s–%s", days, FormatClock(g.open), FormatClock(g.close)))
	}
	return strings.Join(parts, ", ")
}
