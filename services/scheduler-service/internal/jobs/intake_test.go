package jobs

import (
	"errors"
	"testing"
)

func TestParseRequest(t *testing.T) {
	job, err := parseRequest([]byte(`{"reservation_id":"r1","remind_at":"2024-12-15T10:00:00Z","start_at":"2024-12-16T10:00:00Z"}`))
	if err != nil {
		t.Fatalf("parseRequest: %v", err)
	}
	if job.ReservationID != "r1" || job.IdempotencyKey != "r1|2024-12-15T10:00:00Z|2024-12-16T10:00:00Z" {
		t.Fatalf("unexpected job: %+v", job)
	}

	for _, body := range []string{
		`not json`,
		`{"reservation_id":"r1"}`,
		`{"reservation_id":"r1","remind_at":"2024-12-16T10:00:00Z","start_at":"2024-12-16T10:00:00Z"}`,
	} {
		if _, err := parseRequest([]byte(body)); !errors.Is(err, errInvalidRequest) {
			t.Fatalf("%s: expected errInvalidRequest, got %v", body, err)
		}
	}
}
