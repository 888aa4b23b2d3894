package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
)

var (
	ErrUnknownDay         = errors.New("unknown weekday")
	ErrDayNotConfigured   = errors.New("weekday is not configured")
	ErrInvalidWindow      = errors.New("window start must be before end and within the day")
	ErrOverlappingWindows = errors.New("windows overlap")
	ErrExceptionExists    = errors.New("exception date already exists")
	ErrExceptionNotFound  = errors.New("exception date not found")
)

// Day is the weekly configuration of one weekday (0=Sunday).
type Day struct {
	Weekday time.Weekday          `json:"weekday"`
	Active  bool                  `json:"is_active"`
	Windows []availability.Window `json:"windows"`
}

// ExceptionDate closes the office for a whole calendar day.
type ExceptionDate struct {
	Date        time.Time `json:"date"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func ValidWeekday(wd time.Weekday) bool {
	return wd >= time.Sunday && wd <= time.Saturday
}

// Validate checks bounds and that no two windows overlap. Windows that only
// touch are allowed. On success the windows are sorted by start.
func (d *Day) Validate() error {
	if !ValidWeekday(d.Weekday) {
		return ErrUnknownDay
	}
	for _, w := range d.Windows {
		if !w.Valid() {
			return fmt.Errorf("%w: %s-%s", ErrInvalidWindow, w.Start, w.End)
		}
	}
	sort.Slice(d.Windows, func(i, j int) bool { return d.Windows[i].Start < d.Windows[j].Start })
	for i := 1; i < len(d.Windows); i++ {
		if d.Windows[i-1].Overlaps(d.Windows[i]) {
			return fmt.Errorf("%w: %s-%s and %s-%s", ErrOverlappingWindows,
				d.Windows[i-1].Start, d.Windows[i-1].End, d.Windows[i].Start, d.Windows[i].End)
		}
	}
	return nil
}

func toDaySchedule(d Day, ok bool) availability.DaySchedule {
	if !ok {
		return availability.DaySchedule{}
	}
	return availability.DaySchedule{Configured: true, Active: d.Active, Windows: d.Windows}
}
