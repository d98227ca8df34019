package email

import (
	"fmt"
	"strings"
	"time"
)

// Notification kinds understood by Render.
const (
	KindConfirmation = "confirmation"
	KindAdminNotice  = "adminNotice"
	KindCancellation = "cancellation"
	KindReminder     = "reminder"
)

// TemplateData describes the reservation a message is about.
type TemplateData struct {
	BusinessName string
	Recipient    string
	ClientName   string
	ClientPhone  string
	ServiceName  string
	Status       string
	StartAt      time.Time
	EndAt        time.Time
	Reason       string
	Location     *time.Location
}

func (d TemplateData) when() string {
	loc := d.locationOrUTC()
	start := d.StartAt.In(loc)
	return fmt.Sprintf("%s, %s %s–%s",
		start.Format("Monday 2 January 2006"), start.Format("15:04"),
		d.EndAt.In(loc).Format("15:04"), loc.String())
}

func (d TemplateData) service() string {
	if strings.TrimSpace(d.ServiceName) == "" {
		return "your treatment"
	}
	return d.ServiceName
}

func (d TemplateData) business() string {
	if strings.TrimSpace(d.BusinessName) == "" {
		return "Masajes"
	}
	return d.BusinessName
}

// Render builds the message for kind.
func Render(kind string, d TemplateData) (Message, error) {
	name := strings.TrimSpace(d.ClientName)
	if name == "" {
		name = "there"
	}
	m := Message{To: d.Recipient}
	switch kind {
	case KindConfirmation:
		if d.Status == "CONFIRMED" {
			m.Subject = fmt.Sprintf("Your %s booking is confirmed", d.business())
			m.TextBody = fmt.Sprintf("Hi %s,\n\nYour booking for %s on %s is confirmed.\n\nSee you soon,\n%s",
				name, d.service(), d.when(), d.business())
		} else {
			m.Subject = fmt.Sprintf("We received your %s booking request", d.business())
			m.TextBody = fmt.Sprintf("Hi %s,\n\nWe received your request for %s on %s.\nWe will let you know as soon as it is confirmed.\n\nThanks,\n%s",
				name, d.service(), d.when(), d.business())
		}
	case KindAdminNotice:
		m.Subject = fmt.Sprintf("New booking request: %s", d.service())
		m.TextBody = fmt.Sprintf("New booking request from %s (%s).\n\nTreatment: %s\nWhen: %s\nStatus: %s\n",
			d.ClientName, d.ClientPhone, d.service(), d.when(), d.Status)
	case KindCancellation:
		m.Subject = fmt.Sprintf("Your %s booking was cancelled", d.business())
		m.TextBody = fmt.Sprintf("Hi %s,\n\nYour booking for %s on %s was cancelled.", name, d.service(), d.when())
		if r := strings.TrimSpace(d.Reason); r != "" {
			m.TextBody += "\nReason: " + r
		}
		m.TextBody += "\n\nWe hope to see you another time,\n" + d.business()
	case KindReminder:
		m.Subject = fmt.Sprintf("Reminder: %s on %s", d.service(), d.StartAt.In(d.locationOrUTC()).Format("Mon 2 Jan 15:04"))
		m.TextBody = fmt.Sprintf("Hi %s,\n\nThis is a reminder of your booking for %s on %s.\n\nSee you soon,\n%s",
			name, d.service(), d.when(), d.business())
	default:
		return Message{}, fmt.Errorf("%w: unsupported kind %q", errInvalidMessage, kind)
	}
	return m, nil
}

func (d TemplateData) locationOrUTC() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}
