package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AppointmentRepository struct {
	db db.DB
}

func NewAppointmentRepository(d db.DB) *AppointmentRepository {
	return &AppointmentRepository{db: d}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// LockDate serializes bookings for one calendar day until tx ends.
func (r *AppointmentRepository) LockDate(ctx context.Context, tx pgx.Tx, date time.Time) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "appointments:"+date.Format(time.DateOnly))
	return err
}

// ActiveIntervals reads pending and confirmed appointments outside any transaction.
func (r *AppointmentRepository) ActiveIntervals(ctx context.Context, date time.Time) ([]availability.Window, error) {
	return activeIntervals(ctx, r.db, date)
}

// Booked returns an interval source reading through q, typically the booking tx.
func (r *AppointmentRepository) Booked(q db.Querier) availability.Booked {
	return bookedSource{q: q}
}

type bookedSource struct {
	q db.Querier
}

func (b bookedSource) ActiveIntervals(ctx context.Context, date time.Time) ([]availability.Window, error) {
	return activeIntervals(ctx, b.q, date)
}

func activeIntervals(ctx context.Context, q db.Querier, date time.Time) ([]availability.Window, error) {
	rows, err := q.Query(ctx, `
		SELECT start_minute, duration_minutes
		FROM appointments
		WHERE appointment_date = $1
			AND status IN ('pending', 'confirmed')
		ORDER BY start_minute ASC
	`, availability.DateOf(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.Window
	for rows.Next() {
		var start int
		var a model.Appointment
		if err := rows.Scan(&start, &a.DurationMinutes); err != nil {
			return nil, err
		}
		a.Start = availability.Clock(start)
		out = append(out, a.Span())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Create inserts appt, assigning its id and timestamps.
func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.Status == "" {
		appt.Status = model.StatusPending
	}
	return tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, client_name, email, phone, practice_area, appointment_date, start_minute, duration_minutes, notes, status, confirmation_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, appt.ID, appt.ClientName, appt.Email, appt.Phone, appt.PracticeArea, availability.DateOf(appt.Date),
		appt.Start.Minutes(), appt.DurationMinutes, appt.Notes, string(appt.Status), appt.ConfirmationSent,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
}

const appointmentColumns = `id::text, client_name, email, phone, practice_area, appointment_date,
	start_minute, duration_minutes, notes, status, confirmation_sent, created_at, updated_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var (
		appt   model.Appointment
		start  int
		status string
	)
	err := row.Scan(
		&appt.ID,
		&appt.ClientName,
		&appt.Email,
		&appt.Phone,
		&appt.PracticeArea,
		&appt.Date,
		&start,
		&appt.DurationMinutes,
		&appt.Notes,
		&status,
		&appt.ConfirmationSent,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.Date = availability.DateOf(appt.Date)
	appt.Start = availability.Clock(start)
	appt.Status = model.Status(status)
	return appt, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id))
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id))
}

type ListFilter struct {
	From   time.Time
	To     time.Time
	Status model.Status
	Limit  int
}

func (r *AppointmentRepository) List(ctx context.Context, f ListFilter) ([]model.Appointment, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var from, to, status any
	if !f.From.IsZero() {
		from = availability.DateOf(f.From)
	}
	if !f.To.IsZero() {
		to = availability.DateOf(f.To)
	}
	if f.Status != "" {
		status = string(f.Status)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1::date IS NULL OR appointment_date >= $1::date)
			AND ($2::date IS NULL OR appointment_date <= $2::date)
			AND ($3::text IS NULL OR status = $3::text)
		ORDER BY appointment_date ASC, start_minute ASC
		LIMIT $4
	`, from, to, status, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.Status) (time.Time, error) {
	var updatedAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, id, string(status)).Scan(&updatedAt)
	return updatedAt, err
}

// MarkConfirmationSent is idempotent; it reports whether a row changed.
func (r *AppointmentRepository) MarkConfirmationSent(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET confirmation_sent = true,
			updated_at = now()
		WHERE id = $1 AND confirmation_sent = false
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IdempotencyRecord remembers the response given for a client-supplied
// Idempotency-Key so that retried POSTs replay it.
type IdempotencyRecord struct {
	Key             string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

// LockIdempotencyKey returns the existing record (found=true) or inserts and
// locks an empty one for this tx.
func (r *AppointmentRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, bool, error) {
	rec, err := selectIdempotencyForUpdate(ctx, tx, key)
	if err == nil {
		return rec, rec.StatusCode != 0, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (idempotency_key)
		VALUES ($1)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = selectIdempotencyForUpdate(ctx, tx, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, rec.StatusCode != 0, nil
}

func (r *AppointmentRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $2,
			status_code = $3,
			response_payload = $4,
			updated_at = now()
		WHERE idempotency_key = $1
	`, key, appointmentID, statusCode, string(response))
	return err
}

func selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE idempotency_key = $1
		FOR UPDATE
	`, key).Scan(&rec.Key, &rec.AppointmentID, &rec.StatusCode, &responseText)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if strings.TrimSpace(responseText) != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
