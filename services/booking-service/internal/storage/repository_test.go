package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/booking"
)

func TestMapErr(t *testing.T) {
	if mapErr(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if !errors.Is(mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows)), booking.ErrNotFound) {
		t.Fatal("no rows must map to ErrNotFound")
	}
	exclusion := &pgconn.PgError{Code: "23P01", ConstraintName: "reservations_no_overlap"}
	mapped := mapErr(exclusion)
	if !errors.Is(mapped, booking.ErrConflict) {
		t.Fatal("exclusion violation must map to ErrConflict")
	}
	var pgErr *pgconn.PgError
	if !errors.As(mapped, &pgErr) || pgErr.ConstraintName != "reservations_no_overlap" {
		t.Fatal("driver error must stay reachable")
	}
	other := errors.New("boom")
	if mapErr(other) != other {
		t.Fatal("other errors pass through")
	}
}

func TestTrimSQL(t *testing.T) {
	if got := trimSQL("CREATE  TABLE\n\tfoo (id INT)"); got != "CREATE TABLE foo (id INT)" {
		t.Fatalf("unexpected %q", got)
	}
	for _, stmt := range schema {
		if len(trimSQL(stmt)) > 63 {
			t.Fatalf("trimSQL did not shorten %q", stmt)
		}
	}
}
