package booking

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/availability"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
	"github.com/nyaruka/phonenumbers"
)

var validate = validator.New()

const (
	maxNameLen   = 100
	maxNotesLen  = 500
	maxReasonLen = 200
)

// BookingRequest is the raw booking payload as submitted by a client or an admin.
type BookingRequest struct {
	ClientName     string `json:"clientName"`
	ClientEmail    string `json:"clientEmail"`
	ClientPhone    string `json:"clientPhone"`
	ServiceID      string `json:"serviceId"`
	StartAt        string `json:"startAt"`
	Notes          string `json:"notes,omitempty"`
	IdempotencyKey string `json:"-"`
}

// BookingInput is a BookingRequest that passed validation.
type BookingInput struct {
	Client    Client
	ServiceID string
	StartAt   time.Time
	Notes     string
}

type Client struct {
	Name  string
	Email string
	Phone string
}

type fieldErrors []string

func (f *fieldErrors) add(field, format string, args ...any) {
	*f = append(*f, field+": "+fmt.Sprintf(format, args...))
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Kind: KindInvalidInput, Message: strings.Join(f, "; ")}
}

// ValidateBooking checks a booking request. Phone numbers without a country prefix are read
// in phoneRegion and normalised to E.164.
func ValidateBooking(req BookingRequest, phoneRegion string) (BookingInput, error) {
	var errs fieldErrors
	in := BookingInput{
		ServiceID: strings.TrimSpace(req.ServiceID),
		Notes:     strings.TrimSpace(req.Notes),
	}

	in.Client.Name = validateName(&errs, "clientName", req.ClientName)
	in.Client.Email = validateEmail(&errs, "clientEmail", req.ClientEmail)
	in.Client.Phone = validatePhone(&errs, "clientPhone", req.ClientPhone, phoneRegion)
	if in.ServiceID == "" {
		errs.add("serviceId", "is required")
	}
	in.StartAt = validateTime(&errs, "startAt", req.StartAt)
	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		errs.add("notes", "must be at most %d characters", maxNotesLen)
	}

	if err := errs.err(); err != nil {
		return BookingInput{}, err
	}
	return in, nil
}

func validateName(errs *fieldErrors, field, raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		errs.add(field, "is required")
	case n < 2 || n > maxNameLen:
		errs.add(field, "must be between 2 and %d characters", maxNameLen)
	}
	return name
}

func validateEmail(errs *fieldErrors, field, raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		errs.add(field, "is required")
		return ""
	}
	// Require a dotted domain.
	if err := validate.Var(email, "email,max=254"); err != nil || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		errs.add(field, "is not a valid email address")
		return ""
	}
	return strings.ToLower(email)
}

func validatePhone(errs *fieldErrors, field, raw, region string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		errs.add(field, "is required")
		return ""
	}
	num, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		errs.add(field, "is not a valid phone number")
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func validateTime(errs *fieldErrors, field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.add(field, "is required")
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		errs.add(field, "must be an ISO-8601 timestamp with offset")
		return time.Time{}
	}
	return t
}

// BlockRequest is the payload for creating or replacing a blocked interval.
type BlockRequest struct {
	StartAt     string `json:"startAt"`
	EndAt       string `json:"endAt"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

type BlockInput struct {
	StartAt     time.Time
	EndAt       time.Time
	Reason      string
	Description string
	Active      *bool
}

func ValidateBlock(req BlockRequest) (BlockInput, error) {
	var errs fieldErrors
	in := BlockInput{
		Reason:      strings.TrimSpace(req.Reason),
		Description: strings.TrimSpace(req.Description),
		Active:      req.Active,
	}
	if in.Reason == "" {
		errs.add("reason", "is required")
	} else if utf8.RuneCountInString(in.Reason) > maxReasonLen {
		errs.add("reason", "must be at most %d characters", maxReasonLen)
	}
	in.StartAt = validateTime(&errs, "startAt", req.StartAt)
	in.EndAt = validateTime(&errs, "endAt", req.EndAt)
	if err := errs.err(); err != nil {
		return BlockInput{}, err
	}
	if !in.EndAt.After(in.StartAt) {
		return BlockInput{}, newError(KindInvalidRange, "endAt must be after startAt")
	}
	return in, nil
}

// PatchRequest carries a partial reservation update. Nil fields are left untouched.
type PatchRequest struct {
	Status      *string `json:"status,omitempty"`
	ClientName  *string `json:"clientName,omitempty"`
	ClientEmail *string `json:"clientEmail,omitempty"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	StartAt     *string `json:"startAt,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type PatchInput struct {
	Status      *model.Status
	ClientName  *string
	ClientEmail *string
	ClientPhone *string
	Notes       *string
	StartAt     *time.Time
	Reason      string
}

func (p PatchInput) hasEdits() bool {
	return p.ClientName != nil || p.ClientEmail != nil || p.ClientPhone != nil || p.Notes != nil || p.StartAt != nil
}

func ValidatePatch(req PatchRequest, phoneRegion string) (PatchInput, error) {
	var errs fieldErrors
	in := PatchInput{Reason: strings.TrimSpace(req.Reason)}

	if req.Status != nil {
		st := model.Status(strings.ToUpper(strings.TrimSpace(*req.Status)))
		if !st.Valid() {
			errs.add("status", "must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED")
		}
		in.Status = &st
	}
	if req.ClientName != nil {
		v := validateName(&errs, "clientName", *req.ClientName)
		in.ClientName = &v
	}
	if req.ClientEmail != nil {
		v := validateEmail(&errs, "clientEmail", *req.ClientEmail)
		in.ClientEmail = &v
	}
	if req.ClientPhone != nil {
		v := validatePhone(&errs, "clientPhone", *req.ClientPhone, phoneRegion)
		in.ClientPhone = &v
	}
	if req.Notes != nil {
		v := strings.TrimSpace(*req.Notes)
		if utf8.RuneCountInString(v) > maxNotesLen {
			errs.add("notes", "must be at most %d characters", maxNotesLen)
		}
		in.Notes = &v
	}
	if req.StartAt != nil {
		v := validateTime(&errs, "startAt", *req.StartAt)
		in.StartAt = &v
	}
	if utf8.RuneCountInString(in.Reason) > maxNotesLen {
		errs.add("reason", "must be at most %d characters", maxNotesLen)
	}
	if err := errs.err(); err != nil {
		return PatchInput{}, err
	}
	if in.Status == nil && !in.hasEdits() {
		return PatchInput{}, newError(KindInvalidInput, "nothing to update")
	}
	return in, nil
}

// WeeklyRequest edits the opening window of one weekday.
type WeeklyRequest struct {
	Active    bool   `json:"active"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

func ValidateWeekly(day int, req WeeklyRequest) (model.WeeklyDay, error) {
	var errs fieldErrors
	if day < 0 || day > 6 {
		errs.add("dayOfWeek", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	parse := func(field, raw string) int {
		if !req.Active && strings.TrimSpace(raw) == "" {
			return 0
		}
		minute, err := availability.ParseClock(raw)
		if err != nil {
			errs.add(field, "%v", err)
		}
		return minute
	}
	open := parse("openTime", req.OpenTime)
	closing := parse("closeTime", req.CloseTime)
	if err := errs.err(); err != nil {
		return model.WeeklyDay{}, err
	}
	if req.Active && open >= closing {
		return model.WeeklyDay{}, newError(KindInvalidInput, "openTime must be before closeTime")
	}
	return model.WeeklyDay{DayOfWeek: day, Active: req.Active, OpenMinute: open, CloseMinute: closing}, nil
}
