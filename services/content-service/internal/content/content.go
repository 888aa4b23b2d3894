// Package content holds the firm's public website records.
package content

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var ErrNotFound = errors.New("content: not found")

// ValidationError reports the first invalid field of an admin or contact payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type PracticeAreaImage struct {
	ID             int64     `json:"id"`
	PracticeAreaID int64     `json:"practice_area_id"`
	ImageURL       string    `json:"image_url"`
	Caption        string    `json:"caption"`
	SortOrder      int       `json:"order"`
	CreatedAt      time.Time `json:"created_at"`
}

type PracticeArea struct {
	ID               int64               `json:"id"`
	Name             string              `json:"name"`
	Slug             string              `json:"slug"`
	Description      string              `json:"description"`
	FeaturedImageURL string              `json:"featured_image_url"`
	GalleryImages    []PracticeAreaImage `json:"gallery_images"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type Attorney struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"full_name"`
	Slug            string    `json:"slug"`
	JobTitle        string    `json:"job_title"`
	Bio             string    `json:"bio"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	PhotoURL        string    `json:"photo_url"`
	SortOrder       int       `json:"order"`
	IsActive        bool      `json:"is_active"`
	Specializations []string  `json:"specializations"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BlogPost struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Author        string    `json:"author"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	PublishedDate string    `json:"published_date"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	maxNameLength    = 255
	maxExcerptLength = 500
	maxPhoneLength   = 20
	maxMessageLength = 5000
)

func required(field, value string, max int) error {
	if value == "" {
		return invalid(field, field+" is required")
	}
	if len(value) > max {
		return invalid(field, field+" is too long")
	}
	return nil
}

func validEmail(field, value string, optional bool) error {
	if value == "" {
		if optional {
			return nil
		}
		return invalid(field, field+" is required")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return invalid(field, field+" must be a valid email address")
	}
	return nil
}

// Normalize trims fields and checks a new practice area.
func (p *PracticeArea) Normalize() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.FeaturedImageURL = strings.TrimSpace(p.FeaturedImageURL)
	return required("name", p.Name, maxNameLength)
}

func (img *PracticeAreaImage) Normalize() error {
	img.ImageURL = strings.TrimSpace(img.ImageURL)
	img.Caption = strings.TrimSpace(img.Caption)
	if img.PracticeAreaID <= 0 {
		return invalid("practice_area_id", "practice_area_id is required")
	}
	if img.SortOrder < 0 {
		return invalid("order", "order must not be negative")
	}
	return required("image_url", img.ImageURL, 1000)
}

func (a *Attorney) Normalize() error {
	a.FullName = strings.TrimSpace(a.FullName)
	a.JobTitle = strings.TrimSpace(a.JobTitle)
	a.Bio = strings.TrimSpace(a.Bio)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.PhotoURL = strings.TrimSpace(a.PhotoURL)
	specs := a.Specializations[:0]
	for _, s := range a.Specializations {
		if s = strings.TrimSpace(s); s != "" {
			specs = append(specs, s)
		}
	}
	a.Specializations = specs

	if err := required("full_name", a.FullName, maxNameLength); err != nil {
		return err
	}
	if err := required("job_title", a.JobTitle, maxNameLength); err != nil {
		return err
	}
	if len(a.Phone) > maxPhoneLength {
		return invalid("phone", "phone is too long")
	}
	if a.SortOrder < 0 {
		return invalid("order", "order must not be negative")
	}
	return validEmail("email", a.Email, true)
}

func (b *BlogPost) Normalize() error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Excerpt = strings.TrimSpace(b.Excerpt)
	b.Content = strings.TrimSpace(b.Content)
	b.Category = strings.TrimSpace(b.Category)
	if err := required("title", b.Title, maxNameLength); err != nil {
		return err
	}
	if err := required("author", b.Author, maxNameLength); err != nil {
		return err
	}
	if err := required("excerpt", b.Excerpt, maxExcerptLength); err != nil {
		return err
	}
	if b.Content == "" {
		return invalid("content", "content is required")
	}
	if len(b.Category) > 100 {
		return invalid("category", "category is too long")
	}
	return nil
}

func (c *ContactMessage) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Message = strings.TrimSpace(c.Message)
	if err := required("name", c.Name, maxNameLength); err != nil {
		return err
	}
	if err := validEmail("email", c.Email, false); err != nil {
		return err
	}
	if len(c.Phone) > maxPhoneLength {
		return invalid("phone", "phone is too long")
	}
	return required("message", c.Message, maxMessageLength)
}
