package availability

import (
	"context"
	"fmt"
	"time"
)

// DefaultGranularity is the slot step in minutes.
const DefaultGranularity = 30

// DaySchedule is the configuration of one weekday.
type DaySchedule struct {
	Configured bool
	Active     bool
	Windows    []Window
}

// Open reports whether the day can take any booking at all.
func (d DaySchedule) Open() bool {
	return d.Configured && d.Active && len(d.Windows) > 0
}

// Schedule supplies weekly windows and exception dates.
type Schedule interface {
	DaySchedule(ctx context.Context, weekday time.Weekday) (DaySchedule, error)
	IsExceptionDate(ctx context.Context, date time.Time) (bool, error)
}

// Booked supplies the intervals of pending and confirmed appointments on a date.
type Booked interface {
	ActiveIntervals(ctx context.Context, date time.Time) ([]Window, error)
}

// DateAvailability is one entry of FreeDates.
type DateAvailability struct {
	Date      time.Time
	Weekday   time.Weekday
	SlotCount int
}

// Engine computes free slots and validates requested slots. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	schedule    Schedule
	now         func() time.Time
	loc         *time.Location
	granularity int
}

type Option func(*Engine)

func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the firm's time zone, which decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithGranularity(minutes int) Option {
	return func(e *Engine) {
		if minutes > 0 {
			e.granularity = minutes
		}
	}
}

func NewEngine(schedule Schedule, opts ...Option) *Engine {
	e := &Engine{
		schedule:    schedule,
		now:         time.Now,
		loc:         time.UTC,
		granularity: DefaultGranularity,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current calendar day in the firm's time zone.
func (e *Engine) Today() time.Time {
	return DateOf(e.now().In(e.loc))
}

// FreeSlots lists the bookable start times on date for an appointment of
// duration minutes, ascending.
func (e *Engine) FreeSlots(ctx context.Context, booked Booked, date time.Time, duration int) ([]Clock, error) {
	if duration <= 0 {
		return nil, ErrInvalidInput
	}
	date = DateOf(date)
	if date.Before(e.Today()) {
		return nil, nil
	}

	day, closed, err := e.openDay(ctx, date)
	if err != nil || closed != ClosureNone {
		return nil, err
	}

	busy, err := booked.ActiveIntervals(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load booked intervals: %w", err)
	}
	return Slots(day.Windows, busy, duration, e.granularity), nil
}

// FreeDates scans dayCount consecutive days starting startOffset days after
// today and returns the days that have at least one free slot, in order.
func (e *Engine) FreeDates(ctx context.Context, booked Booked, startOffset, dayCount, duration int) ([]DateAvailability, error) {
	if duration <= 0 || dayCount < 0 || startOffset < 0 {
		return nil, ErrInvalidInput
	}
	today := e.Today()
	var out []DateAvailability
	for i := 0; i < dayCount; i++ {
		date := today.AddDate(0, 0, startOffset+i)
		slots, err := e.FreeSlots(ctx, booked, date, duration)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			continue
		}
		out = append(out, DateAvailability{Date: date, Weekday: date.Weekday(), SlotCount: len(slots)})
	}
	return out, nil
}

// ValidateSlot checks a single requested appointment. Checks run in a fixed
// order and the first failure wins: past date, closed day, outside window,
// conflict. Rejections are *RejectionError.
func (e *Engine) ValidateSlot(ctx context.Context, booked Booked, date time.Time, start Clock, duration int) error {
	if duration <= 0 || start < 0 || start >= MinutesPerDay {
		return ErrInvalidInput
	}
	date = DateOf(date)
	if date.Before(e.Today()) {
		return reject(ErrPastDate, date, ClosureNone)
	}

	day, closed, err := e.openDay(ctx, date)
	if err != nil {
		return err
	}
	if closed != ClosureNone {
		return reject(ErrClosedDay, date, closed)
	}

	span := Span(start, duration)
	if !containedInAny(span, day.Windows) {
		return reject(ErrOutsideWindow, date, ClosureNone)
	}

	busy, err := booked.ActiveIntervals(ctx, date)
	if err != nil {
		return fmt.Errorf("load booked intervals: %w", err)
	}
	if overlapsAny(span, busy) {
		return reject(ErrConflict, date, ClosureNone)
	}
	return nil
}

func (e *Engine) openDay(ctx context.Context, date time.Time) (DaySchedule, Closure, error) {
	exception, err := e.schedule.IsExceptionDate(ctx, date)
	if err != nil {
		return DaySchedule{}, ClosureNone, fmt.Errorf("load exception dates: %w", err)
	}
	if exception {
		return DaySchedule{}, ClosureException, nil
	}

	day, err := e.schedule.DaySchedule(ctx, date.Weekday())
	if err != nil {
		return DaySchedule{}, ClosureNone, fmt.Errorf("load weekly schedule: %w", err)
	}
	switch {
	case !day.Configured:
		return day, ClosureUnconfigured, nil
	case !day.Open():
		return day, ClosureInactive, nil
	}
	return day, ClosureNone, nil
}
