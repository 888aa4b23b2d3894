package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/availability"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/booking"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/model"
	"github.com/equitylawandco/lawsite/services/booking-service/internal/storage"
	"github.com/google/uuid"
)

// AdminHandler serves appointment management for firm staff. The gateway
// only routes here for admin tokens.
type AdminHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewAdminHandler(svc *booking.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

type statusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type listResponse struct {
	Appointments []appointmentView `json:"appointments"`
	Total        int               `json:"total"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	var f storage.ListFilter
	var err error
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		if f.From, err = availability.ParseDate(raw); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid from (format: YYYY-MM-DD)")
			return
		}
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		if f.To, err = availability.ParseDate(raw); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid to (format: YYYY-MM-DD)")
			return
		}
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, ok := model.ParseStatus(raw)
		if !ok {
			httpx.WriteError(w, http.StatusBadRequest, "invalid status")
			return
		}
		f.Status = st
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if f.Limit, err = strconv.Atoi(raw); err != nil || f.Limit <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	appts, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.logger.Error("list appointments failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	out := make([]appointmentView, 0, len(appts))
	for _, a := range appts {
		out = append(out, toView(a))
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Appointments: out, Total: len(out)})
}

func (h *AdminHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, booking.ErrNotFound.Error())
		return
	}
	appt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toView(appt))
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "status must be one of pending, confirmed, cancelled, completed")
		return
	}
	id := strings.TrimSpace(req.ID)
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusNotFound, booking.ErrNotFound.Error())
		return
	}

	appt, err := h.svc.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	httpx.WriteJSON(w, http.StatusOK, toView(appt))
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("admin appointment request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
