package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput  = errors.New("duration must be positive")
	ErrPastDate      = errors.New("date is in the past")
	ErrClosedDay     = errors.New("office is closed on date")
	ErrOutsideWindow = errors.New("time is outside available hours")
	ErrConflict      = errors.New("time overlaps an existing appointment")
)

// Closure explains why a day is closed.
type Closure int

const (
	ClosureNone Closure = iota
	// ClosureUnconfigured: the weekday has no schedule entry at all.
	ClosureUnconfigured
	// ClosureInactive: the weekday is switched off or has no windows.
	ClosureInactive
	// ClosureException: the date is an exception date (holiday).
	ClosureException
)

// RejectionError is returned by ValidateSlot. It unwraps to one of
// ErrPastDate, ErrClosedDay, ErrOutsideWindow or ErrConflict.
type RejectionError struct {
	Err     error
	Closure Closure
	Date    time.Time
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Date.Format(time.DateOnly), e.Err)
}

func (e *RejectionError) Unwrap() error { return e.Err }

// Message is the user-facing explanation shown by the booking API.
func (e *RejectionError) Message() string {
	switch {
	case errors.Is(e.Err, ErrPastDate):
		return "Cannot book appointments in the past."
	case errors.Is(e.Err, ErrClosedDay):
		if e.Closure == ClosureUnconfigured {
			return "Appointments cannot be booked on this day."
		}
		return "The office is closed on this day."
	case errors.Is(e.Err, ErrOutsideWindow):
		return "This appointment time is not within available office hours."
	case errors.Is(e.Err, ErrConflict):
		return "This time slot or a portion of it is already booked. Please choose another time."
	default:
		return e.Err.Error()
	}
}

// Reason is a stable machine-readable label, used for metrics.
func (e *RejectionError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrPastDate):
		return "past_date"
	case errors.Is(e.Err, ErrClosedDay):
		return "closed_day"
	case errors.Is(e.Err, ErrOutsideWindow):
		return "outside_window"
	case errors.Is(e.Err, ErrConflict):
		return "conflict"
	default:
		return "rejected"
	}
}

func reject(err error, date time.Time, closure Closure) *RejectionError {
	return &RejectionError{Err: err, Closure: closure, Date: date}
}
