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

const blockColumns = `id::text, start_at, end_at, reason, description, active, created_at, updated_at`

func scanBlock(row pgx.Row) (model.BlockedInterval, error) {
	var b model.BlockedInterval
	err := row.Scan(&b.ID, &b.StartAt, &b.EndAt, &b.Reason, &b.Description, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBlocks(rows pgx.Rows, err error) ([]model.BlockedInterval, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlockedInterval
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) ActiveBlocks(ctx context.Context, from, to time.Time) ([]model.BlockedInterval, error) {
	return collectBlocks(q.db.Query(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_intervals
		WHERE active
			AND start_at < $2
			AND end_at > $1
		ORDER BY start_at ASC
	`, from, to))
}

func (q *Queries) ListBlocks(ctx context.Context, f booking.BlockFilter) ([]model.BlockedInterval, error) {
	var where []string
	var args []any
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("end_at > $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("start_at < $%d", len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "active")
	}
	sql := `SELECT ` + blockColumns + ` FROM blocked_intervals`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY start_at ASC`
	return collectBlocks(q.db.Query(ctx, sql, args...))
}

func (q *Queries) GetBlock(ctx context.Context, id string, forUpdate bool) (model.BlockedInterval, error) {
	sql := `SELECT ` + blockColumns + ` FROM blocked_intervals WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	b, err := scanBlock(q.db.QueryRow(ctx, sql, id))
	return b, mapErr(err)
}

func (q *Queries) InsertBlock(ctx context.Context, b model.BlockedInterval) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO blocked_intervals (id, start_at, end_at, reason, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.StartAt, b.EndAt, b.Reason, b.Description, b.Active, b.CreatedAt, b.UpdatedAt)
	return err
}

func (q *Queries) UpdateBlock(ctx context.Context, b model.BlockedInterval) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE blocked_intervals
		SET start_at = $2, end_at = $3, reason = $4, description = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, b.ID, b.StartAt, b.EndAt, b.Reason, b.Description, b.Active, b.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (q *Queries) DeleteBlock(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM blocked_intervals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}
