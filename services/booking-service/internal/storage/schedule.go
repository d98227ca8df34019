package storage

import (
	"context"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

func (q *Queries) ListWeekly(ctx context.Context) ([]model.WeeklyDay, error) {
	rows, err := q.db.Query(ctx, `
		SELECT day_of_week, active, open_minute, close_minute
		FROM weekly_availability
		ORDER BY day_of_week
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WeeklyDay
	for rows.Next() {
		var d model.WeeklyDay
		if err := rows.Scan(&d.DayOfWeek, &d.Active, &d.OpenMinute, &d.CloseMinute); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *Queries) UpsertWeekly(ctx context.Context, d model.WeeklyDay) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO weekly_availability (day_of_week, active, open_minute, close_minute, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (day_of_week) DO UPDATE
		SET active = EXCLUDED.active,
			open_minute = EXCLUDED.open_minute,
			close_minute = EXCLUDED.close_minute,
			updated_at = now()
	`, d.DayOfWeek, d.Active, d.OpenMinute, d.CloseMinute)
	return err
}

func (q *Queries) GetService(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := q.db.QueryRow(ctx, `
		SELECT id, name, duration_minutes, price_cents, active
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active)
	return s, mapErr(err)
}

func (q *Queries) ListServices(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, name, duration_minutes, price_cents, active
		FROM services
		WHERE active OR NOT $1
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.DurationMinutes, &s.PriceCents, &s.Active); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpsertService is used by the catalog seed.
func (q *Queries) UpsertService(ctx context.Context, s model.Service) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO services (id, name, duration_minutes, price_cents, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			duration_minutes = EXCLUDED.duration_minutes,
			price_cents = EXCLUDED.price_cents,
			active = EXCLUDED.active,
			updated_at = now()
	`, s.ID, s.Name, s.DurationMinutes, s.PriceCents, s.Active)
	return err
}
