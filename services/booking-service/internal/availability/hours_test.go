package availability

import (
	"testing"
	"time"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

func TestParseClock(t *testing.T) {
	for in, want := range map[string]int{"09:00": 540, "00:00": 0, "23:59": 1439, "24:00": 1440} {
		got, err := ParseClock(in)
		if err != nil || got != want {
			t.Fatalf("ParseClock(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"9:00", "25:00", "12:60", "24:30", "noon", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestWithinBusinessHours(t *testing.T) {
	if !WithinBusinessHours(at(17, 0), time.Hour, weekdays) {
		t.Fatal("17:00 + 60m should fit before 18:00")
	}
	if WithinBusinessHours(at(17, 30), time.Hour, weekdays) {
		t.Fatal("17:30 + 60m runs past closing")
	}
	if WithinBusinessHours(at(8, 30), time.Hour, weekdays) {
		t.Fatal("08:30 is before opening")
	}
	if WithinBusinessHours(monday.AddDate(0, 0, -1).Add(10*time.Hour), time.Hour, weekdays) {
		t.Fatal("sunday is inactive")
	}
}

func TestSummary(t *testing.T) {
	weekly := []model.WeeklyDay{
		{DayOfWeek: 0, Active: false},
		{DayOfWeek: 1, Active: true, OpenMinute: 540, CloseMinute: 1080},
		{DayOfWeek: 2, Active: true, OpenMinute: 540, CloseMinute: 1080},
		{DayOfWeek: 3, Active: true, OpenMinute: 540, CloseMinute: 1080},
		{DayOfWeek: 4, Active: true, OpenMinute: 540, CloseMinute: 1080},
		{DayOfWeek: 5, Active: true, OpenMinute: 540, CloseMinute: 1080},
		{DayOfWeek: 6, Active: true, OpenMinute: 600, CloseMinute: 840},
	}
	if got, want := Summary(weekly), "Monday–Friday 09:00–18:00, Saturday 10:00–14:00"; got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}

	weekly[3].Active = false
	if got, want := Summary(weekly), "Monday–Tuesday 09:00–18:00, Thursday–Friday 09:00–18:00, Saturday 10:00–14:00"; got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
	if got := Summary(nil); got != "closed" {
		t.Fatalf("Summary(nil) = %q", got)
	}
}
