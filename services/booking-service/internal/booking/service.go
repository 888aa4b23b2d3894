package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/libs/events"
	"github.com/equitylawandco/lawsite/libs/metrics"
	"github.com/equitylawandco/lawsite/libs/outbox"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/model"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/storage"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Service owns the appointment write path: validation, the per-date lock,
// the insert and the booked event all happen in one transaction.
type Service struct {
	repo    *storage.AppointmentRepository
	outbox  *outbox.Repository
	engine  *availability.Engine
	metrics *metrics.BookingMetrics
	logger  *slog.Logger
}

func NewService(repo *storage.AppointmentRepository, outboxRepo *outbox.Repository, engine *availability.Engine, m *metrics.BookingMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, outbox: outboxRepo, engine: engine, metrics: m, logger: logger}
}

type Result struct {
	Appointment model.Appointment
	// Replayed is set when an earlier request with the same idempotency key
	// already booked this appointment.
	Replayed bool
}

func (s *Service) Book(ctx context.Context, req Request) (Result, error) {
	in, err := req.parse()
	if err != nil {
		s.metrics.ObserveAttempt("invalid")
		return Result{}, err
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if req.IdempotencyKey != "" {
		rec, found, err := s.repo.LockIdempotencyKey(ctx, tx, req.IdempotencyKey)
		if err != nil {
			return Result{}, fmt.Errorf("lock idempotency key: %w", err)
		}
		if found && rec.AppointmentID != "" {
			appt, err := s.repo.GetForUpdate(ctx, tx, rec.AppointmentID)
			if err != nil {
				return Result{}, fmt.Errorf("load replayed appointment: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				return Result{}, err
			}
			s.metrics.ObserveAttempt("replayed")
			return Result{Appointment: appt, Replayed: true}, nil
		}
	}

	if err := s.repo.LockDate(ctx, tx, in.date); err != nil {
		return Result{}, fmt.Errorf("lock date: %w", err)
	}

	if err := s.engine.ValidateSlot(ctx, s.repo.Booked(tx), in.date, in.start, in.duration); err != nil {
		var rej *availability.RejectionError
		if errors.As(err, &rej) {
			s.metrics.ObserveAttempt(rej.Reason())
		}
		return Result{}, err
	}

	appt := model.Appointment{
		ClientName:      in.name,
		Email:           in.email,
		Phone:           in.phone,
		PracticeArea:    in.practiceArea,
		Date:            in.date,
		Start:           in.start,
		DurationMinutes: in.duration,
		Notes:           in.notes,
		Status:          model.StatusPending,
	}
	if err := s.repo.Create(ctx, tx, &appt); err != nil {
		return Result{}, fmt.Errorf("insert appointment: %w", err)
	}

	payload, err := json.Marshal(BookedEvent(appt))
	if err != nil {
		return Result{}, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     events.AppointmentBookedV1,
		Payload:       payload,
	}); err != nil {
		return Result{}, fmt.Errorf("write outbox event: %w", err)
	}

	if req.IdempotencyKey != "" {
		if err := s.repo.FinalizeIdempotency(ctx, tx, req.IdempotencyKey, appt.ID, http.StatusCreated, payload); err != nil {
			return Result{}, fmt.Errorf("finalize idempotency key: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, err
	}
	s.metrics.ObserveAttempt("booked")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"date", appt.Date.Format(time.DateOnly),
		"time", appt.Start.String(),
		"duration_minutes", appt.DurationMinutes,
	)
	return Result{Appointment: appt}, nil
}

// BookedEvent is the payload published when an appointment is stored.
func BookedEvent(appt model.Appointment) events.AppointmentBooked {
	return events.AppointmentBooked{
		AppointmentID:      appt.ID,
		ConfirmationNumber: appt.ConfirmationNumber(),
		ClientName:         appt.ClientName,
		ClientEmail:        appt.Email,
		ClientPhone:        appt.Phone,
		PracticeArea:       appt.PracticeArea,
		Date:               appt.Date.Format(time.DateOnly),
		Time:               appt.Start.String(),
		DurationMinutes:    appt.DurationMinutes,
		Notes:              appt.Notes,
		Status:             string(appt.Status),
		CreatedAt:          appt.CreatedAt,
	}
}

// UpdateStatus applies an admin status change. Setting the current status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id string, status model.Status) (model.Appointment, error) {
	var appt model.Appointment
	err := db.InTx(ctx, s.repo, func(tx pgx.Tx) error {
		var err error
		appt, err = s.repo.GetForUpdate(ctx, tx, id)
		if db.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if appt.Status == status {
			return nil
		}
		if !appt.Status.CanTransition(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, appt.Status, status)
		}
		updatedAt, err := s.repo.UpdateStatus(ctx, tx, id, status)
		if err != nil {
			return err
		}
		appt.Status = status
		appt.UpdatedAt = updatedAt
		return nil
	})
	if err != nil {
		return model.Appointment{}, err
	}
	s.metrics.ObserveStatusUpdate(string(status))
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if db.IsNotFound(err) {
		return model.Appointment{}, ErrNotFound
	}
	return appt, err
}

func (s *Service) List(ctx context.Context, f storage.ListFilter) ([]model.Appointment, error) {
	return s.repo.List(ctx, f)
}

// MarkConfirmationSent records that the client's confirmation email went out.
func (s *Service) MarkConfirmationSent(ctx context.Context, id string) error {
	changed, err := s.repo.MarkConfirmationSent(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Info("confirmation recorded", "appointment_id", id)
	}
	return nil
}

func (s *Service) FreeSlots(ctx context.Context, date time.Time, duration int) ([]availability.Clock, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQuery("slots", time.Since(start).Seconds()) }()
	return s.engine.FreeSlots(ctx, s.repo, date, duration)
}

// FreeDates scans the daysAhead days after today.
func (s *Service) FreeDates(ctx context.Context, daysAhead, duration int) ([]availability.DateAvailability, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveQuery("dates", time.Since(start).Seconds()) }()
	return s.engine.FreeDates(ctx, s.repo, 1, daysAhead, duration)
}

func (s *Service) Today() time.Time {
	return s.engine.Today()
}
