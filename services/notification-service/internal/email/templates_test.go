package email

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func sampleData() TemplateData {
	madrid, _ := time.LoadLocation("Europe/Madrid")
	return TemplateData{
		Recipient:   "ana@example.com",
		ClientName:  "Ana",
		ServiceName: "Relaxing massage",
		Status:      "PENDING",
		StartAt:     time.Date(2024, 12, 16, 9, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2024, 12, 16, 10, 0, 0, 0, time.UTC),
		Location:    madrid,
	}
}

func TestRenderUsesBusinessTimeZone(t *testing.T) {
	m, err := Render(KindReminder, sampleData())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if m.To != "ana@example.com" {
		t.Fatalf("unexpected recipient %q", m.To)
	}
	if !strings.Contains(m.TextBody, "10:00–11:00") {
		t.Fatalf("expected local times in body, got %q", m.TextBody)
	}
	if !strings.Contains(m.Subject, "Relaxing massage") {
		t.Fatalf("unexpected subject %q", m.Subject)
	}
}

func TestRenderConfirmationDependsOnStatus(t *testing.T) {
	d := sampleData()
	pending, _ := Render(KindConfirmation, d)
	d.Status = "CONFIRMED"
	confirmed, _ := Render(KindConfirmation, d)
	if pending.Subject == confirmed.Subject {
		t.Fatalf("expected different subjects, got %q", pending.Subject)
	}
	if !strings.Contains(confirmed.Subject, "confirmed") {
		t.Fatalf("unexpected subject %q", confirmed.Subject)
	}
}

func TestRenderCancellationIncludesReason(t *testing.T) {
	d := sampleData()
	d.Reason = "therapist unavailable"
	m, err := Render(KindCancellation, d)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(m.TextBody, "Reason: therapist unavailable") {
		t.Fatalf("expected reason in body, got %q", m.TextBody)
	}
}

func TestRenderRejectsUnknownKind(t *testing.T) {
	if _, err := Render("sms", sampleData()); !errors.Is(err, errInvalidMessage) {
		t.Fatalf("expected errInvalidMessage, got %v", err)
	}
}

func TestBuildMessageRequiresRecipient(t *testing.T) {
	if _, err := buildMessage("from@example.com", Message{Subject: "x"}); !errors.Is(err, errInvalidMessage) {
		t.Fatalf("expected errInvalidMessage, got %v", err)
	}
}
