package schedule

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
)

func newCached(t *testing.T) (*CachedStore, pgxmock.PgxPoolIface, *miniredis.Miniredis) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCachedStore(NewStore(mock), rdb, time.Minute, "test:schedule", nil), mock, mr
}

func TestCachedStoreReadsThrough(t *testing.T) {
	cs, mock, mr := newCached(t)
	ctx := context.Background()

	// Only one database round trip for two lookups.
	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())

	ds, err := cs.DaySchedule(ctx, time.Monday)
	require.NoError(t, err)
	require.Equal(t, []availability.Window{win("09:00", "12:00"), win("13:00", "17:00")}, ds.Windows)

	ds, err = cs.DaySchedule(ctx, time.Tuesday)
	require.NoError(t, err)
	require.True(t, ds.Open())

	require.True(t, mr.Exists("test:schedule:week"))
	require.Equal(t, time.Minute, mr.TTL("test:schedule:week"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStoreSaveDayInvalidates(t *testing.T) {
	cs, mock, mr := newCached(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())
	_, err := cs.Week(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("test:schedule:week"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_days").WithArgs(6, false).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM schedule_windows").WithArgs(6).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()
	require.NoError(t, cs.SaveDay(ctx, Day{Weekday: time.Saturday}))
	require.False(t, mr.Exists("test:schedule:week"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStoreExceptionDates(t *testing.T) {
	cs, mock, mr := newCached(t)
	ctx := context.Background()
	xmas := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM exception_dates").WithArgs(nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"date", "name", "description"}).AddRow(xmas, "Christmas", ""))

	closed, err := cs.IsExceptionDate(ctx, xmas)
	require.NoError(t, err)
	require.True(t, closed)

	closed, err = cs.IsExceptionDate(ctx, xmas.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.False(t, closed)

	mock.ExpectExec("DELETE FROM exception_dates").WithArgs(xmas).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, cs.DeleteExceptionDate(ctx, xmas))
	require.False(t, mr.Exists("test:schedule:exceptions"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedStoreFallsBackWhenRedisDown(t *testing.T) {
	cs, mock, mr := newCached(t)
	mr.Close()

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())
	week, err := cs.Week(context.Background())
	require.NoError(t, err)
	require.Len(t, week, 4)
	require.NoError(t, mock.ExpectationsWereMet())
}
