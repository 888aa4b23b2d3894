package handlers

import "net/http"

func Register(mux *http.ServeMux, appts *AppointmentHandler, admin *AdminHandler, sched *ScheduleHandler) {
	mux.HandleFunc("/api/v1/appointments", appts.Create)
	mux.HandleFunc("/api/v1/appointments/available_slots", appts.AvailableSlots)
	mux.HandleFunc("/api/v1/appointments/available_dates", appts.AvailableDates)

	mux.HandleFunc("/api/v1/admin/appointments", admin.List)
	mux.HandleFunc("/api/v1/admin/appointments/detail", admin.Detail)
	mux.HandleFunc("/api/v1/admin/appointments/status", admin.UpdateStatus)

	mux.HandleFunc("/api/v1/admin/schedule/days", sched.Days)
	mux.HandleFunc(dayPathPrefix, sched.Day)
	mux.HandleFunc("/api/v1/admin/schedule/exceptions", sched.Exceptions)
}
