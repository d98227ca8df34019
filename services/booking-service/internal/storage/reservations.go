package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

const reservationColumns = `id::text, client_name, client_email, client_phone, service_id, start_at, end_at, status, notes, created_at, updated_at`

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var r model.Reservation
	var status string
	err := row.Scan(&r.ID, &r.ClientName, &r.ClientEmail, &r.ClientPhone, &r.ServiceID,
		&r.StartAt, &r.EndAt, &status, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	r.Status = model.Status(status)
	return r, err
}

func collectReservations(rows pgx.Rows, err error) ([]model.Reservation, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) BlockingReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	return collectReservations(q.db.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status IN ('PENDING', 'CONFIRMED')
			AND start_at < $2
			AND end_at > $1
		ORDER BY start_at ASC
	`, from, to))
}

func (q *Queries) ListReservations(ctx context.Context, f booking.ReservationFilter) ([]model.Reservation, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("start_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("start_at < $%d", *f.To)
	}
	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	sql := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	sql += fmt.Sprintf(` ORDER BY start_at ASC LIMIT $%d`, len(args))
	return collectReservations(q.db.Query(ctx, sql, args...))
}

func (q *Queries) GetReservation(ctx context.Context, id string, forUpdate bool) (model.Reservation, error) {
	sql := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	r, err := scanReservation(q.db.QueryRow(ctx, sql, id))
	return r, mapErr(err)
}

func (q *Queries) InsertReservation(ctx context.Context, r model.Reservation) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO reservations
			(id, client_name, client_email, client_phone, service_id, start_at, end_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.ClientName, r.ClientEmail, r.ClientPhone, r.ServiceID, r.StartAt, r.EndAt, string(r.Status), r.Notes, r.CreatedAt, r.UpdatedAt)
	return mapErr(err)
}

func (q *Queries) UpdateReservation(ctx context.Context, r model.Reservation) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE reservations
		SET client_name = $2,
			client_email = $3,
			client_phone = $4,
			start_at = $5,
			end_at = $6,
			status = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`, r.ID, r.ClientName, r.ClientEmail, r.ClientPhone, r.StartAt, r.EndAt, string(r.Status), r.Notes, r.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (q *Queries) AppendHistory(ctx context.Context, h model.HistoryEntry) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO reservation_history (id, reservation_id, action, detail, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, h.ID, h.ReservationID, h.Action, h.Detail, h.Actor, h.CreatedAt)
	return err
}

func (q *Queries) History(ctx context.Context, reservationID string) ([]model.HistoryEntry, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id::text, reservation_id::text, action, detail, actor, created_at
		FROM reservation_history
		WHERE reservation_id = $1
		ORDER BY created_at ASC, id ASC
	`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.ID, &h.ReservationID, &h.Action, &h.Detail, &h.Actor, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
