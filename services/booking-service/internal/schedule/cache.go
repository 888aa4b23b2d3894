package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/redis/go-redis/v9"
)

// CachedStore serves weekly configuration and exception dates from Redis,
// falling back to the Postgres store on a miss or a Redis error. Writes go to
// Postgres and drop the cached keys.
type CachedStore struct {
	*Store
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewCachedStore(store *Store, rdb *redis.Client, ttl time.Duration, prefix string, logger *slog.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "lawsite:schedule"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{Store: store, rdb: rdb, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *CachedStore) weekKey() string       { return c.prefix + ":week" }
func (c *CachedStore) exceptionsKey() string { return c.prefix + ":exceptions" }

func (c *CachedStore) Week(ctx context.Context) ([]Day, error) {
	var week []Day
	if c.get(ctx, c.weekKey(), &week) {
		return week, nil
	}
	week, err := c.Store.Week(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, c.weekKey(), week)
	return week, nil
}

func (c *CachedStore) Day(ctx context.Context, wd time.Weekday) (Day, bool, error) {
	if !ValidWeekday(wd) {
		return Day{}, false, ErrUnknownDay
	}
	week, err := c.Week(ctx)
	if err != nil {
		return Day{}, false, err
	}
	return findDay(week, wd)
}

func (c *CachedStore) DaySchedule(ctx context.Context, wd time.Weekday) (availability.DaySchedule, error) {
	d, ok, err := c.Day(ctx, wd)
	if err != nil {
		return availability.DaySchedule{}, err
	}
	return toDaySchedule(d, ok), nil
}

// IsExceptionDate checks the cached set of all exception dates.
func (c *CachedStore) IsExceptionDate(ctx context.Context, date time.Time) (bool, error) {
	var dates []string
	if !c.get(ctx, c.exceptionsKey(), &dates) {
		all, err := c.Store.ExceptionDates(ctx, time.Time{}, time.Time{})
		if err != nil {
			return false, err
		}
		dates = make([]string, 0, len(all))
		for _, e := range all {
			dates = append(dates, e.Date.Format(time.DateOnly))
		}
		c.set(ctx, c.exceptionsKey(), dates)
	}
	want := availability.DateOf(date).Format(time.DateOnly)
	for _, d := range dates {
		if d == want {
			return true, nil
		}
	}
	return false, nil
}

func (c *CachedStore) SaveDay(ctx context.Context, day Day) error {
	if err := c.Store.SaveDay(ctx, day); err != nil {
		return err
	}
	c.invalidate(ctx, c.weekKey())
	return nil
}

func (c *CachedStore) DeleteDay(ctx context.Context, wd time.Weekday) error {
	if err := c.Store.DeleteDay(ctx, wd); err != nil {
		return err
	}
	c.invalidate(ctx, c.weekKey())
	return nil
}

func (c *CachedStore) AddExceptionDate(ctx context.Context, e ExceptionDate) error {
	if err := c.Store.AddExceptionDate(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx, c.exceptionsKey())
	return nil
}

func (c *CachedStore) DeleteExceptionDate(ctx context.Context, date time.Time) error {
	if err := c.Store.DeleteExceptionDate(ctx, date); err != nil {
		return err
	}
	c.invalidate(ctx, c.exceptionsKey())
	return nil
}

func (c *CachedStore) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("schedule cache read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("schedule cache entry corrupt", "key", key, "err", err)
		return false
	}
	return true
}

func (c *CachedStore) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache write failed", "key", key, "err", err)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("schedule cache invalidate failed", "key", key, "err", err)
	}
}
