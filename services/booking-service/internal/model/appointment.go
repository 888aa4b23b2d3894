package model

import (
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an admin may move an appointment from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

type Appointment struct {
	ID               string
	ClientName       string
	Email            string
	Phone            string
	PracticeArea     string
	Date             time.Time
	Start            availability.Clock
	DurationMinutes  int
	Notes            string
	Status           Status
	ConfirmationSent bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (a Appointment) Span() availability.Window {
	return availability.Span(a.Start, a.DurationMinutes)
}

// ConfirmationNumber is the short reference quoted to clients.
func (a Appointment) ConfirmationNumber() string {
	id := strings.ReplaceAll(a.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
