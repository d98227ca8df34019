package booking

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Its value is the machine readable code returned to clients.
type Kind string

const (
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindServiceNotFound      Kind = "SERVICE_NOT_FOUND"
	KindServiceInactive      Kind = "SERVICE_INACTIVE"
	KindPastDate             Kind = "PAST_DATE"
	KindOutsideBusinessHours Kind = "OUTSIDE_BUSINESS_HOURS"
	KindSlotUnavailable      Kind = "SLOT_UNAVAILABLE"
	KindInvalidRange         Kind = "INVALID_RANGE"
	KindOverlappingBlock     Kind = "OVERLAPPING_BLOCK"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindNotFound             Kind = "NOT_FOUND"
	KindInternal             Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors not raised by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client facing message of err. Internal details are never exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}

// Store errors returned by Queries implementations.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflicting reservation")
)
