package booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
)

const (
	DefaultDurationMinutes = 60
	MaxDurationMinutes     = 480

	maxNameLen         = 255
	maxEmailLen        = 254
	maxPhoneLen        = 20
	maxNotesLen        = 5000
	maxPracticeAreaLen = 100
	minPhoneDigits     = 7
	maxPhoneDigits     = 15
)

// ValidationError is a malformed booking request. Message is shown to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Request is a client's booking request as submitted to the public API.
type Request struct {
	ClientName      string `json:"client_name"`
	ClientEmail     string `json:"client_email"`
	ClientPhone     string `json:"client_phone"`
	Date            string `json:"appointment_date"`
	Time            string `json:"appointment_time"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	PracticeArea    string `json:"practice_area,omitempty"`
	Notes           string `json:"notes,omitempty"`

	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type parsedRequest struct {
	name, email, phone string
	practiceArea       string
	notes              string
	date               time.Time
	start              availability.Clock
	duration           int
}

func (r Request) parse() (parsedRequest, error) {
	var p parsedRequest

	p.name = strings.TrimSpace(r.ClientName)
	if p.name == "" {
		return p, invalid("client_name", "client_name is required")
	}
	if utf8.RuneCountInString(p.name) > maxNameLen {
		return p, invalid("client_name", "client_name must be at most %d characters", maxNameLen)
	}

	email := strings.TrimSpace(r.ClientEmail)
	if utf8.RuneCountInString(email) > maxEmailLen {
		return p, invalid("client_email", "client_email must be at most %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if email == "" || err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return p, invalid("client_email", "client_email must be a valid email address")
	}
	p.email = strings.ToLower(email)

	p.phone = strings.TrimSpace(r.ClientPhone)
	if err := validatePhone(p.phone); err != nil {
		return p, err
	}

	if strings.TrimSpace(r.Date) == "" {
		return p, invalid("appointment_date", "appointment_date is required (format: YYYY-MM-DD)")
	}
	p.date, err = availability.ParseDate(r.Date)
	if err != nil {
		return p, invalid("appointment_date", "Invalid date format. Use YYYY-MM-DD")
	}
	p.start, err = availability.ParseClock(r.Time)
	if err != nil || p.start >= availability.MinutesPerDay {
		return p, invalid("appointment_time", "Invalid time format. Use HH:MM")
	}

	p.duration = DefaultDurationMinutes
	if r.DurationMinutes != nil {
		p.duration = *r.DurationMinutes
	}
	if p.duration < 1 || p.duration > MaxDurationMinutes {
		return p, invalid("duration_minutes", "duration_minutes must be between 1 and %d", MaxDurationMinutes)
	}

	p.practiceArea = strings.TrimSpace(r.PracticeArea)
	if len(p.practiceArea) > maxPracticeAreaLen {
		return p, invalid("practice_area", "practice_area must be at most %d characters", maxPracticeAreaLen)
	}
	p.notes = strings.TrimSpace(r.Notes)
	if utf8.RuneCountInString(p.notes) > maxNotesLen {
		return p, invalid("notes", "notes must be at most %d characters", maxNotesLen)
	}
	return p, nil
}

func validatePhone(phone string) error {
	if utf8.RuneCountInString(phone) > maxPhoneLen {
		return invalid("client_phone", "client_phone must be at most %d characters", maxPhoneLen)
	}
	digits := 0
	for _, c := range phone {
		switch {
		case unicode.IsDigit(c):
			digits++
		case strings.ContainsRune("+-(). ", c):
		default:
			return invalid("client_phone", "client_phone may only contain digits, spaces and + - ( ) .")
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return invalid("client_phone", "client_phone must contain %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}
	return nil
}
