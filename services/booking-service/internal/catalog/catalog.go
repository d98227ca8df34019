package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/availability"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
	"gopkg.in/yaml.v3"
)

// ServiceConfig is one treatment of the catalog file.
type ServiceConfig struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	DurationMinutes int    `yaml:"duration_minutes"`
	PriceCents      int64  `yaml:"price_cents"`
	Active          *bool  `yaml:"active,omitempty"`
}

// HoursConfig opens the listed weekdays between Open and Close ("09:00", "18:00").
type HoursConfig struct {
	Days  []string `yaml:"days"`
	Open  string   `yaml:"open"`
	Close string   `yaml:"close"`
}

type Config struct {
	Services []ServiceConfig `yaml:"services"`
	Hours    []HoursConfig   `yaml:"hours"`
}

// Load reads a catalog file. ${VAR} references are expanded from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Services))
	for i, s := range c.Services {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("services[%d]: id is required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("services[%d]: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("service %q: name is required", s.ID)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("service %q: duration_minutes must be positive", s.ID)
		}
		if s.PriceCents < 0 {
			return fmt.Errorf("service %q: price_cents must not be negative", s.ID)
		}
	}
	_, err := c.Weekly()
	return err
}

var weekdays = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

// Weekly expands the hours section into all seven weekdays. Days not listed are closed.
func (c *Config) Weekly() ([]model.WeeklyDay, error) {
	week := make([]model.WeeklyDay, 7)
	for d := range week {
		week[d].DayOfWeek = d
	}
	assigned := make(map[int]bool)
	for i, h := range c.Hours {
		open, err := availability.ParseClock(h.Open)
		if err != nil {
			return nil, fmt.Errorf("hours[%d].open: %w", i, err)
		}
		closeAt, err := availability.ParseClock(h.Close)
		if err != nil {
			return nil, fmt.Errorf("hours[%d].close: %w", i, err)
		}
		if open >= closeAt {
			return nil, fmt.Errorf("hours[%d]: open must be before close", i)
		}
		if len(h.Days) == 0 {
			return nil, fmt.Errorf("hours[%d]: days is required", i)
		}
		for _, name := range h.Days {
			d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return nil, fmt.Errorf("hours[%d]: unknown day %q", i, name)
			}
			if assigned[d] {
				return nil, fmt.Errorf("hours[%d]: %s listed twice", i, name)
			}
			assigned[d] = true
			week[d] = model.WeeklyDay{DayOfWeek: d, Active: true, OpenMinute: open, CloseMinute: closeAt}
		}
	}
	return week, nil
}

// Writer is the storage the catalog is synced into.
type Writer interface {
	UpsertService(ctx context.Context, s model.Service) error
	UpsertWeekly(ctx context.Context, d model.WeeklyDay) error
}

// Sync upserts services by id and the weekly hours by weekday. An empty hours section
// leaves the stored week untouched so admin edits survive restarts.
func Sync(ctx context.Context, w Writer, cfg *Config) error {
	for _, s := range cfg.Services {
		active := s.Active == nil || *s.Active
		if err := w.UpsertService(ctx, model.Service{
			ID:              s.ID,
			Name:            strings.TrimSpace(s.Name),
			DurationMinutes: s.DurationMinutes,
			PriceCents:      s.PriceCents,
			Active:          active,
		}); err != nil {
			return fmt.Errorf("sync service %s: %w", s.ID, err)
		}
	}
	if len(cfg.Hours) == 0 {
		return nil
	}
	week, err := cfg.Weekly()
	if err != nil {
		return err
	}
	for _, d := range week {
		if err := w.UpsertWeekly(ctx, d); err != nil {
			return fmt.Errorf("sync weekday %d: %w", d.DayOfWeek, err)
		}
	}
	return nil
}
