package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/schedule"
)

// ScheduleStore is implemented by schedule.Store and schedule.CachedStore.
type ScheduleStore interface {
	Week(ctx context.Context) ([]schedule.Day, error)
	Day(ctx context.Context, wd time.Weekday) (schedule.Day, bool, error)
	SaveDay(ctx context.Context, day schedule.Day) error
	DeleteDay(ctx context.Context, wd time.Weekday) error
	ExceptionDates(ctx context.Context, from, to time.Time) ([]schedule.ExceptionDate, error)
	AddExceptionDate(ctx context.Context, e schedule.ExceptionDate) error
	DeleteExceptionDate(ctx context.Context, date time.Time) error
}

type ScheduleHandler struct {
	store  ScheduleStore
	logger *slog.Logger
}

func NewScheduleHandler(store ScheduleStore, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{store: store, logger: logger}
}

const dayPathPrefix = "/api/v1/admin/schedule/days/"

type dayView struct {
	Weekday int                   `json:"weekday"`
	Day     string                `json:"day"`
	Active  bool                  `json:"is_active"`
	Windows []availability.Window `json:"windows"`
}

type dayRequest struct {
	Active  bool                  `json:"is_active"`
	Windows []availability.Window `json:"windows"`
}

type exceptionView struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toDayView(d schedule.Day) dayView {
	windows := d.Windows
	if windows == nil {
		windows = []availability.Window{}
	}
	return dayView{Weekday: int(d.Weekday), Day: d.Weekday.String(), Active: d.Active, Windows: windows}
}

func (h *ScheduleHandler) Days(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	week, err := h.store.Week(r.Context())
	if err != nil {
		h.fail(w, "list schedule days", err)
		return
	}
	out := make([]dayView, 0, len(week))
	for _, d := range week {
		out = append(out, toDayView(d))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"days": out})
}

// Day handles GET, PUT and DELETE on /api/v1/admin/schedule/days/{weekday}.
func (h *ScheduleHandler) Day(w http.ResponseWriter, r *http.Request) {
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, dayPathPrefix), "/")
	n, err := strconv.Atoi(raw)
	if err != nil || !schedule.ValidWeekday(time.Weekday(n)) {
		httpx.WriteError(w, http.StatusNotFound, schedule.ErrUnknownDay.Error())
		return
	}
	wd := time.Weekday(n)
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		day, ok, err := h.store.Day(ctx, wd)
		if err != nil {
			h.fail(w, "get schedule day", err)
			return
		}
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, schedule.ErrDayNotConfigured.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toDayView(day))

	case http.MethodPut:
		var req dayRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		day := schedule.Day{Weekday: wd, Active: req.Active, Windows: req.Windows}
		if err := h.store.SaveDay(ctx, day); err != nil {
			if errors.Is(err, schedule.ErrInvalidWindow) || errors.Is(err, schedule.ErrOverlappingWindows) {
				httpx.WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			h.fail(w, "save schedule day", err)
			return
		}
		h.logger.Info("schedule day saved", "weekday", wd.String(), "active", day.Active, "windows", len(day.Windows))
		httpx.WriteJSON(w, http.StatusOK, toDayView(day))

	case http.MethodDelete:
		if err := h.store.DeleteDay(ctx, wd); err != nil {
			if errors.Is(err, schedule.ErrDayNotConfigured) {
				httpx.WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			h.fail(w, "delete schedule day", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *ScheduleHandler) Exceptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	switch r.Method {
	case http.MethodGet:
		from, ok := optionalDate(w, q.Get("from"), "from")
		if !ok {
			return
		}
		to, ok := optionalDate(w, q.Get("to"), "to")
		if !ok {
			return
		}
		list, err := h.store.ExceptionDates(ctx, from, to)
		if err != nil {
			h.fail(w, "list exception dates", err)
			return
		}
		out := make([]exceptionView, 0, len(list))
		for _, e := range list {
			out = append(out, exceptionView{Date: e.Date.Format(time.DateOnly), Name: e.Name, Description: e.Description})
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"exception_dates": out})

	case http.MethodPost:
		var req exceptionView
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		date, err := availability.ParseDate(req.Date)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || len(req.Name) > 255 {
			httpx.WriteError(w, http.StatusBadRequest, "name is required (max 255 characters)")
			return
		}
		req.Description = strings.TrimSpace(req.Description)
		err = h.store.AddExceptionDate(ctx, schedule.ExceptionDate{Date: date, Name: req.Name, Description: req.Description})
		if errors.Is(err, schedule.ErrExceptionExists) {
			httpx.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			h.fail(w, "add exception date", err)
			return
		}
		req.Date = date.Format(time.DateOnly)
		httpx.WriteJSON(w, http.StatusCreated, req)

	case http.MethodDelete:
		date, err := availability.ParseDate(q.Get("date"))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "date parameter is required (format: YYYY-MM-DD)")
			return
		}
		if err := h.store.DeleteExceptionDate(ctx, date); err != nil {
			if errors.Is(err, schedule.ErrExceptionNotFound) {
				httpx.WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			h.fail(w, "delete exception date", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		httpx.MethodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *ScheduleHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, "internal error")
}

func optionalDate(w http.ResponseWriter, raw, name string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	d, err := availability.ParseDate(raw)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid "+name+" (format: YYYY-MM-DD)")
		return time.Time{}, false
	}
	return d, true
}
