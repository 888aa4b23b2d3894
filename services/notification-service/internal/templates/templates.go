// Package templates renders the firm's notification emails.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/equitylawandco/lawsite/libs/events"
)

//go:embed files/*.html
var files embed.FS

// Firm is the sender identity printed in every email.
type Firm struct {
	Name    string
	Phone   string
	Email   string
	Office  string
	Website string
}

func DefaultFirm() Firm {
	return Firm{
		Name:    "Equity Law & Co",
		Phone:   "(977) 9841052926",
		Email:   "contact@equitylawandco.com",
		Office:  "Thapagaun, Kathmandu, Nepal",
		Website: "https://equitylawandco.com",
	}
}

// Rendered is a ready-to-send subject and HTML body.
type Rendered struct {
	Subject string
	HTML    string
}

type Renderer struct {
	firm Firm
	tmpl *template.Template
	now  func() time.Time
}

func New(firm Firm) (*Renderer, error) {
	tmpl, err := template.New("emails").Funcs(template.FuncMap{
		"longDate":     longDate,
		"clock12":      clock12,
		"practiceArea": practiceArea,
		"receivedAt":   func(t time.Time) string { return t.Format("January 02, 2006 at 03:04 PM") },
	}).ParseFS(files, "files/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Renderer{firm: firm, tmpl: tmpl, now: time.Now}, nil
}

type view struct {
	Firm        Firm
	Year        int
	Appointment events.AppointmentBooked
	Contact     events.ContactSubmitted
}

func (r *Renderer) AppointmentClient(a events.AppointmentBooked) (Rendered, error) {
	subject := fmt.Sprintf("✓ Appointment Confirmed - %s at %s", a.Date, a.Time)
	return r.render("appointment_client.html", subject, view{Appointment: a})
}

func (r *Renderer) AppointmentAdmin(a events.AppointmentBooked) (Rendered, error) {
	subject := fmt.Sprintf("New Appointment Booking - %s (%s)", a.ClientName, a.Date)
	return r.render("appointment_admin.html", subject, view{Appointment: a})
}

func (r *Renderer) ContactAdmin(c events.ContactSubmitted) (Rendered, error) {
	subject := fmt.Sprintf("New Contact Message from %s", c.Name)
	return r.render("contact_admin.html", subject, view{Contact: c})
}

func (r *Renderer) ContactUser(c events.ContactSubmitted) (Rendered, error) {
	subject := "✓ We Received Your Message - " + r.firm.Name
	return r.render("contact_user.html", subject, view{Contact: c})
}

func (r *Renderer) render(name, subject string, v view) (Rendered, error) {
	v.Firm = r.firm
	v.Year = r.now().Year()
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, v); err != nil {
		return Rendered{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Rendered{Subject: subject, HTML: buf.String()}, nil
}

func longDate(s string) string {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return d.Format("January 02, 2006")
}

func clock12(s string) string {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return s
	}
	return t.Format("03:04 PM")
}

func practiceArea(s string) string {
	if s == "" {
		return "General Inquiry"
	}
	return s
}
