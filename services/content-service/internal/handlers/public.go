package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
	"github.com/equitylawandco/lawsite/services/content-service/internal/slugs"
	"github.com/equitylawandco/lawsite/services/content-service/internal/storage"
)

const (
	practiceAreasPath = "/api/v1/content/practice-areas"
	attorneysPath     = "/api/v1/content/attorneys"
	blogsPath         = "/api/v1/content/blogs"
	contactPath       = "/api/v1/content/contact"

	contactReceivedMessage = "Thank you for your message. We will get back to you soon."
)

// Store is the content persistence used by the handlers.
type Store interface {
	ListPracticeAreas(ctx context.Context) ([]content.PracticeArea, error)
	PracticeAreaBySlug(ctx context.Context, slug string) (content.PracticeArea, error)
	CreatePracticeArea(ctx context.Context, p *content.PracticeArea) error
	AddPracticeAreaImage(ctx context.Context, img *content.PracticeAreaImage) error
	ListAttorneys(ctx context.Context) ([]content.Attorney, error)
	AttorneyBySlug(ctx context.Context, slug string) (content.Attorney, error)
	CreateAttorney(ctx context.Context, a *content.Attorney) error
	ListBlogPosts(ctx context.Context, limit int) ([]content.BlogPost, error)
	BlogPostBySlug(ctx context.Context, slug string) (content.BlogPost, error)
	CreateBlogPost(ctx context.Context, b *content.BlogPost) error
}

// ContactInbox receives and lists contact form messages.
type ContactInbox interface {
	Submit(ctx context.Context, msg *content.ContactMessage) error
	List(ctx context.Context, unreadOnly bool, limit int) ([]content.ContactMessage, error)
	MarkRead(ctx context.Context, id int64) error
}

type PublicHandler struct {
	store   Store
	contact ContactInbox
	logger  *slog.Logger
}

func NewPublicHandler(store Store, contact ContactInbox, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{store: store, contact: contact, logger: logger}
}

// writeStoreError maps content errors to responses; anything unknown is a 500
// with action in the log.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, content.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrDuplicateTitle):
		httpx.WriteError(w, http.StatusConflict, "a blog post with this title already exists")
	case errors.Is(err, storage.ErrSlugTaken):
		httpx.WriteError(w, http.StatusConflict, "an entry with this name is being created, try again")
	case errors.Is(err, slugs.ErrEmpty):
		httpx.WriteError(w, http.StatusBadRequest, "name must contain letters or digits")
	default:
		logger.Error(action+" failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// slugFrom returns the path segment after prefix, or "" for the collection path.
func slugFrom(path, prefix string) (string, bool) {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" || rest == "/" {
		return "", true
	}
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func (h *PublicHandler) PracticeAreas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	slug, ok := slugFrom(r.URL.Path, practiceAreasPath)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if slug == "" {
		areas, err := h.store.ListPracticeAreas(r.Context())
		if err != nil {
			writeStoreError(w, h.logger, "list practice areas", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, areas)
		return
	}
	area, err := h.store.PracticeAreaBySlug(r.Context(), slug)
	if err != nil {
		writeStoreError(w, h.logger, "load practice area", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, area)
}

func (h *PublicHandler) Attorneys(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	slug, ok := slugFrom(r.URL.Path, attorneysPath)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if slug == "" {
		attorneys, err := h.store.ListAttorneys(r.Context())
		if err != nil {
			writeStoreError(w, h.logger, "list attorneys", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, attorneys)
		return
	}
	a, err := h.store.AttorneyBySlug(r.Context(), slug)
	if err != nil {
		writeStoreError(w, h.logger, "load attorney", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *PublicHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	slug, ok := slugFrom(r.URL.Path, blogsPath)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if slug == "" {
		posts, err := h.store.ListBlogPosts(r.Context(), 0)
		if err != nil {
			writeStoreError(w, h.logger, "list blog posts", err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, posts)
		return
	}
	post, err := h.store.BlogPostBySlug(r.Context(), slug)
	if err != nil {
		writeStoreError(w, h.logger, "load blog post", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req contactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg := content.ContactMessage{Name: req.Name, Email: req.Email, Phone: req.Phone, Message: req.Message}
	if err := h.contact.Submit(r.Context(), &msg); err != nil {
		writeStoreError(w, h.logger, "save contact message", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"message": contactReceivedMessage})
}
