package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the exclusive upper bound of a Clock that starts an interval
// and the inclusive upper bound of one that ends it.
const MinutesPerDay = 24 * 60

// Clock is a time of day in whole minutes since midnight.
type Clock int

var errBadClock = errors.New("time must be HH:MM or HH:MM:SS")

// ParseClock accepts "HH:MM" and "HH:MM:SS" (seconds must be zero). "24:00" is
// accepted so a window can end at midnight.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, errBadClock
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		if len(p) != 2 {
			return 0, errBadClock
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, errBadClock
		}
		nums[i] = n
	}
	h, m := nums[0], nums[1]
	if len(nums) == 3 && nums[2] != 0 {
		return 0, errors.New("time must be on a whole minute")
	}
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, errBadClock
	}
	return Clock(h*60 + m), nil
}

func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Clock) Minutes() int { return int(c) }

func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// DateOf truncates t to its calendar day, expressed as midnight UTC. All dates
// handled by the engine use this form so comparisons are location independent.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into DateOf form.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
}
