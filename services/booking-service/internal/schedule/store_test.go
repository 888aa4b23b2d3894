package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
)

var weekColumns = []string{"weekday", "is_active", "start_minute", "end_minute"}

func seededWeekRows() *pgxmock.Rows {
	return pgxmock.NewRows(weekColumns).
		AddRow(0, false, -1, -1).
		AddRow(1, true, 540, 720).
		AddRow(1, true, 780, 1020).
		AddRow(2, true, 540, 1020).
		AddRow(6, false, -1, -1)
}

func TestStoreWeekGroupsWindows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())

	week, err := NewStore(mock).Week(context.Background())
	require.NoError(t, err)
	require.Len(t, week, 4)
	require.Equal(t, time.Sunday, week[0].Weekday)
	require.False(t, week[0].Active)
	require.Empty(t, week[0].Windows)
	require.Equal(t, []availability.Window{win("09:00", "12:00"), win("13:00", "17:00")}, week[1].Windows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDaySchedule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)
	ctx := context.Background()

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())
	ds, err := store.DaySchedule(ctx, time.Monday)
	require.NoError(t, err)
	require.True(t, ds.Open())
	require.Len(t, ds.Windows, 2)

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())
	ds, err = store.DaySchedule(ctx, time.Wednesday)
	require.NoError(t, err)
	require.False(t, ds.Configured)

	mock.ExpectQuery("FROM schedule_days").WillReturnRows(seededWeekRows())
	ds, err = store.DaySchedule(ctx, time.Saturday)
	require.NoError(t, err)
	require.True(t, ds.Configured)
	require.False(t, ds.Open())

	_, _, err = store.Day(ctx, time.Weekday(9))
	require.ErrorIs(t, err, ErrUnknownDay)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveDayReplacesWindows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_days").WithArgs(1, true).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM schedule_windows").WithArgs(1).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO schedule_windows").WithArgs(1, 540, 720).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO schedule_windows").WithArgs(1, 780, 1020).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	day := Day{Weekday: time.Monday, Active: true, Windows: []availability.Window{win("13:00", "17:00"), win("09:00", "12:00")}}
	require.NoError(t, NewStore(mock).SaveDay(context.Background(), day))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveDayRejectsOverlapBeforeWriting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	day := Day{Weekday: time.Monday, Active: true, Windows: []availability.Window{win("09:00", "12:00"), win("10:00", "11:00")}}
	err = NewStore(mock).SaveDay(context.Background(), day)
	require.ErrorIs(t, err, ErrOverlappingWindows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreDeleteDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)

	mock.ExpectExec("DELETE FROM schedule_days").WithArgs(3).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, store.DeleteDay(context.Background(), time.Wednesday))

	mock.ExpectExec("DELETE FROM schedule_days").WithArgs(4).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, store.DeleteDay(context.Background(), time.Thursday), ErrDayNotConfigured)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreExceptionDates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := NewStore(mock)
	ctx := context.Background()
	xmas := time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO exception_dates").WithArgs(xmas, "Christmas", "").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, store.AddExceptionDate(ctx, ExceptionDate{Date: xmas, Name: "Christmas"}))

	mock.ExpectExec("INSERT INTO exception_dates").WithArgs(xmas, "Christmas", "").WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, store.AddExceptionDate(ctx, ExceptionDate{Date: xmas, Name: "Christmas"}), ErrExceptionExists)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(xmas).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	closed, err := store.IsExceptionDate(ctx, xmas.Add(15*time.Hour))
	require.NoError(t, err)
	require.True(t, closed)

	mock.ExpectQuery("FROM exception_dates").WithArgs(nil, xmas).
		WillReturnRows(pgxmock.NewRows([]string{"date", "name", "description"}).AddRow(xmas, "Christmas", "Office closed"))
	list, err := store.ExceptionDates(ctx, time.Time{}, xmas)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Office closed", list[0].Description)

	mock.ExpectExec("DELETE FROM exception_dates").WithArgs(xmas).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, store.DeleteExceptionDate(ctx, xmas), ErrExceptionNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorePropagatesQueryErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM schedule_days").WillReturnError(boom)
	_, err = NewStore(mock).Week(context.Background())
	require.ErrorIs(t, err, boom)
}
