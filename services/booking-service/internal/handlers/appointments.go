package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/booking"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/model"
)

const bookedMessage = "Appointment successfully booked! Confirmation email has been sent."

// AppointmentHandler serves the public availability and booking API.
type AppointmentHandler struct {
	svc          *booking.Service
	logger       *slog.Logger
	maxDaysAhead int
}

func NewAppointmentHandler(svc *booking.Service, logger *slog.Logger, maxDaysAhead int) *AppointmentHandler {
	if maxDaysAhead <= 0 {
		maxDaysAhead = 90
	}
	return &AppointmentHandler{svc: svc, logger: logger, maxDaysAhead: maxDaysAhead}
}

type appointmentView struct {
	ID                 string    `json:"id"`
	ConfirmationNumber string    `json:"confirmation_number"`
	ClientName         string    `json:"client_name"`
	ClientEmail        string    `json:"client_email"`
	ClientPhone        string    `json:"client_phone"`
	PracticeArea       string    `json:"practice_area,omitempty"`
	Date               string    `json:"appointment_date"`
	Time               string    `json:"appointment_time"`
	DurationMinutes    int       `json:"duration_minutes"`
	Notes              string    `json:"notes"`
	Status             string    `json:"status"`
	ConfirmationSent   bool      `json:"confirmation_sent"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toView(a model.Appointment) appointmentView {
	return appointmentView{
		ID:                 a.ID,
		ConfirmationNumber: a.ConfirmationNumber(),
		ClientName:         a.ClientName,
		ClientEmail:        a.Email,
		ClientPhone:        a.Phone,
		PracticeArea:       a.PracticeArea,
		Date:               a.Date.Format(time.DateOnly),
		Time:               a.Start.String(),
		DurationMinutes:    a.DurationMinutes,
		Notes:              a.Notes,
		Status:             string(a.Status),
		ConfirmationSent:   a.ConfirmationSent,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

type slotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	Count          int      `json:"count"`
}

type dateItem struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	SlotsCount int    `json:"slots_count"`
}

type datesResponse struct {
	AvailableDates []dateItem `json:"available_dates"`
	Total          int        `json:"total"`
}

type createResponse struct {
	Message     string          `json:"message"`
	Appointment appointmentView `json:"appointment"`
}

func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	rawDate := strings.TrimSpace(q.Get("date"))
	if rawDate == "" {
		httpx.WriteError(w, http.StatusBadRequest, "date parameter is required (format: YYYY-MM-DD)")
		return
	}
	date, err := availability.ParseDate(rawDate)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	duration, ok := durationParam(w, q.Get("duration_minutes"))
	if !ok {
		return
	}

	slots, err := h.svc.FreeSlots(r.Context(), date, duration)
	if err != nil {
		h.logger.Error("available slots failed", "date", rawDate, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to compute available slots")
		return
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{Date: date.Format(time.DateOnly), AvailableSlots: out, Count: len(out)})
}

func (h *AppointmentHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	daysAhead := 30
	if raw := strings.TrimSpace(q.Get("days_ahead")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > h.maxDaysAhead {
			httpx.WriteError(w, http.StatusBadRequest, "days_ahead must be between 1 and "+strconv.Itoa(h.maxDaysAhead))
			return
		}
		daysAhead = v
	}
	duration, ok := durationParam(w, q.Get("duration_minutes"))
	if !ok {
		return
	}

	dates, err := h.svc.FreeDates(r.Context(), daysAhead, duration)
	if err != nil {
		h.logger.Error("available dates failed", "days_ahead", daysAhead, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to compute available dates")
		return
	}
	out := make([]dateItem, 0, len(dates))
	for _, d := range dates {
		out = append(out, dateItem{Date: d.Date.Format(time.DateOnly), Day: d.Weekday.String(), SlotsCount: d.SlotCount})
	}
	httpx.WriteJSON(w, http.StatusOK, datesResponse{AvailableDates: out, Total: len(out)})
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req booking.Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.svc.Book(r.Context(), req)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	if res.Replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	httpx.WriteJSON(w, http.StatusCreated, createResponse{Message: bookedMessage, Appointment: toView(res.Appointment)})
}

func (h *AppointmentHandler) writeBookingError(w http.ResponseWriter, err error) {
	var (
		verr *booking.ValidationError
		rej  *availability.RejectionError
	)
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &rej):
		httpx.WriteError(w, http.StatusBadRequest, rej.Message())
	case errors.Is(err, availability.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("booking failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to book appointment")
	}
}

func durationParam(w http.ResponseWriter, raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return booking.DefaultDurationMinutes, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > booking.MaxDurationMinutes {
		httpx.WriteError(w, http.StatusBadRequest, "duration_minutes must be between 1 and "+strconv.Itoa(booking.MaxDurationMinutes))
		return 0, false
	}
	return v, true
}
