package schedule

import (
	"context"
	"time"

	"github.com/equitylawandco/lawsite/libs/db"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/jackc/pgx/v5"
)

// Store keeps weekly days, their windows and exception dates in Postgres.
type Store struct {
	db db.DB
}

func NewStore(d db.DB) *Store {
	return &Store{db: d}
}

func (s *Store) Week(ctx context.Context) ([]Day, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.weekday, d.is_active, COALESCE(w.start_minute, -1), COALESCE(w.end_minute, -1)
		FROM schedule_days d
		LEFT JOIN schedule_windows w ON w.weekday = d.weekday
		ORDER BY d.weekday, w.start_minute
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Day
	for rows.Next() {
		var (
			wd         int
			active     bool
			start, end int
		)
		if err := rows.Scan(&wd, &active, &start, &end); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Weekday != time.Weekday(wd) {
			out = append(out, Day{Weekday: time.Weekday(wd), Active: active, Windows: []availability.Window{}})
		}
		if start >= 0 && end >= 0 {
			last := &out[len(out)-1]
			last.Windows = append(last.Windows, availability.Window{Start: availability.Clock(start), End: availability.Clock(end)})
		}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Day returns ok=false when the weekday has no configuration row.
func (s *Store) Day(ctx context.Context, wd time.Weekday) (Day, bool, error) {
	if !ValidWeekday(wd) {
		return Day{}, false, ErrUnknownDay
	}
	week, err := s.Week(ctx)
	if err != nil {
		return Day{}, false, err
	}
	return findDay(week, wd)
}

func findDay(week []Day, wd time.Weekday) (Day, bool, error) {
	for _, d := range week {
		if d.Weekday == wd {
			return d, true, nil
		}
	}
	return Day{}, false, nil
}

// SaveDay replaces the configuration of one weekday.
func (s *Store) SaveDay(ctx context.Context, day Day) error {
	if err := day.Validate(); err != nil {
		return err
	}
	return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedule_days (weekday, is_active)
			VALUES ($1, $2)
			ON CONFLICT (weekday) DO UPDATE
			SET is_active = EXCLUDED.is_active,
				updated_at = now()
		`, int(day.Weekday), day.Active); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schedule_windows WHERE weekday = $1`, int(day.Weekday)); err != nil {
			return err
		}
		for _, w := range day.Windows {
			if _, err := tx.Exec(ctx, `
				INSERT INTO schedule_windows (weekday, start_minute, end_minute)
				VALUES ($1, $2, $3)
			`, int(day.Weekday), w.Start.Minutes(), w.End.Minutes()); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteDay removes a weekday's configuration; windows cascade.
func (s *Store) DeleteDay(ctx context.Context, wd time.Weekday) error {
	if !ValidWeekday(wd) {
		return ErrUnknownDay
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM schedule_days WHERE weekday = $1`, int(wd))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDayNotConfigured
	}
	return nil
}

// ExceptionDates lists exception dates in [from, to]. A zero bound is open.
func (s *Store) ExceptionDates(ctx context.Context, from, to time.Time) ([]ExceptionDate, error) {
	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = availability.DateOf(from)
	}
	if !to.IsZero() {
		toArg = availability.DateOf(to)
	}
	rows, err := s.db.Query(ctx, `
		SELECT date, name, description
		FROM exception_dates
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		ORDER BY date
	`, fromArg, toArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExceptionDate
	for rows.Next() {
		var e ExceptionDate
		if err := rows.Scan(&e.Date, &e.Name, &e.Description); err != nil {
			return nil, err
		}
		e.Date = availability.DateOf(e.Date)
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *Store) AddExceptionDate(ctx context.Context, e ExceptionDate) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO exception_dates (date, name, description)
		VALUES ($1, $2, $3)
	`, availability.DateOf(e.Date), e.Name, e.Description)
	if db.IsUniqueViolation(err) {
		return ErrExceptionExists
	}
	return err
}

func (s *Store) DeleteExceptionDate(ctx context.Context, date time.Time) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM exception_dates WHERE date = $1`, availability.DateOf(date))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExceptionNotFound
	}
	return nil
}

func (s *Store) IsExceptionDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM exception_dates WHERE date = $1)
	`, availability.DateOf(date)).Scan(&exists)
	return exists, err
}

// DaySchedule adapts Day for the availability engine.
func (s *Store) DaySchedule(ctx context.Context, wd time.Weekday) (availability.DaySchedule, error) {
	d, ok, err := s.Day(ctx, wd)
	if err != nil {
		return availability.DaySchedule{}, err
	}
	return toDaySchedule(d, ok), nil
}
