package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

const sample = `
services:
  - id: relax-60
    name: Relaxing massage
    duration_minutes: 60
    price_cents: ${RELAX_PRICE}
  - id: hot-stones
    name: Hot stones
    duration_minutes: 90
    price_cents: 7000
    active: false
hours:
  - days: [monday, tuesday, wednesday, thursday, friday]
    open: "09:00"
    close: "18:00"
  - days: [Saturday]
    open: "10:00"
    close: "14:00"
`

type recorder struct {
	services []model.Service
	weekly   []model.WeeklyDay
}

func (r *recorder) UpsertService(_ context.Context, s model.Service) error {
	r.services = append(r.services, s)
	return nil
}

func (r *recorder) UpsertWeekly(_ context.Context, d model.WeeklyDay) error {
	r.weekly = append(r.weekly, d)
	return nil
}

func TestLoadAndSync(t *testing.T) {
	t.Setenv("RELAX_PRICE", "4500")
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var rec recorder
	if err := Sync(context.Background(), &rec, cfg); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(rec.services) != 2 || rec.services[0].PriceCents != 4500 || !rec.services[0].Active || rec.services[1].Active {
		t.Fatalf("unexpected services: %+v", rec.services)
	}
	if len(rec.weekly) != 7 {
		t.Fatalf("expected 7 weekdays, got %d", len(rec.weekly))
	}
	if rec.weekly[0].Active {
		t.Fatal("sunday should be closed")
	}
	if d := rec.weekly[6]; !d.Active || d.OpenMinute != 600 || d.CloseMinute != 840 {
		t.Fatalf("unexpected saturday: %+v", d)
	}
	if d := rec.weekly[1]; !d.Active || d.OpenMinute != 540 || d.CloseMinute != 1080 {
		t.Fatalf("unexpected monday: %+v", d)
	}
}

func TestParseRejectsInvalidCatalog(t *testing.T) {
	cases := map[string]string{
		"missing duration": "services:\n  - id: a\n    name: A\n",
		"duplicate id":     "services:\n  - {id: a, name: A, duration_minutes: 30}\n  - {id: a, name: B, duration_minutes: 30}\n",
		"unknown day":      "hours:\n  - {days: [funday], open: \"09:00\", close: \"10:00\"}\n",
		"open after close": "hours:\n  - {days: [monday], open: \"18:00\", close: \"09:00\"}\n",
		"day twice":        "hours:\n  - {days: [monday], open: \"09:00\", close: \"10:00\"}\n  - {days: [monday], open: \"11:00\", close: \"12:00\"}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), "catalog") {
			t.Fatalf("%s: expected wrapped error, got %v", name, err)
		}
	}
}

func TestSyncWithoutHoursKeepsWeek(t *testing.T) {
	cfg, err := Parse([]byte("services:\n  - {id: a, name: A, duration_minutes: 30}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var rec recorder
	if err := Sync(context.Background(), &rec, cfg); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(rec.weekly) != 0 {
		t.Fatalf("expected no weekly writes, got %d", len(rec.weekly))
	}
}
