package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
	"github.com/equitylawandco/lawsite/services/content-service/internal/slugs"
	"github.com/equitylawandco/lawsite/services/content-service/internal/storage"
)

type memStore struct {
	areas     []content.PracticeArea
	images    []content.PracticeAreaImage
	attorneys []content.Attorney
	posts     []content.BlogPost
}

func (m *memStore) ListPracticeAreas(context.Context) ([]content.PracticeArea, error) {
	return m.areas, nil
}

func (m *memStore) PracticeAreaBySlug(_ context.Context, slug string) (content.PracticeArea, error) {
	for _, a := range m.areas {
		if a.Slug == slug {
			return a, nil
		}
	}
	return content.PracticeArea{}, content.ErrNotFound
}

func (m *memStore) taken(slug string) bool {
	for _, a := range m.areas {
		if a.Slug == slug {
			return true
		}
	}
	for _, a := range m.attorneys {
		if a.Slug == slug {
			return true
		}
	}
	for _, p := range m.posts {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *memStore) slug(ctx context.Context, source string) (string, error) {
	return slugs.Unique(ctx, source, func(_ context.Context, s string) (bool, error) { return m.taken(s), nil })
}

func (m *memStore) CreatePracticeArea(ctx context.Context, p *content.PracticeArea) error {
	s, err := m.slug(ctx, p.Name)
	if err != nil {
		return err
	}
	p.ID = int64(len(m.areas) + 1)
	p.Slug = s
	m.areas = append(m.areas, *p)
	return nil
}

func (m *memStore) AddPracticeAreaImage(_ context.Context, img *content.PracticeAreaImage) error {
	for _, a := range m.areas {
		if a.ID == img.PracticeAreaID {
			img.ID = int64(len(m.images) + 1)
			m.images = append(m.images, *img)
			return nil
		}
	}
	return content.ErrNotFound
}

func (m *memStore) ListAttorneys(context.Context) ([]content.Attorney, error) {
	return m.attorneys, nil
}

func (m *memStore) AttorneyBySlug(_ context.Context, slug string) (content.Attorney, error) {
	for _, a := range m.attorneys {
		if a.Slug == slug {
			return a, nil
		}
	}
	return content.Attorney{}, content.ErrNotFound
}

func (m *memStore) CreateAttorney(ctx context.Context, a *content.Attorney) error {
	s, err := m.slug(ctx, a.FullName)
	if err != nil {
		return err
	}
	a.ID = int64(len(m.attorneys) + 1)
	a.Slug = s
	m.attorneys = append(m.attorneys, *a)
	return nil
}

func (m *memStore) ListBlogPosts(context.Context, int) ([]content.BlogPost, error) {
	return m.posts, nil
}

func (m *memStore) BlogPostBySlug(_ context.Context, slug string) (content.BlogPost, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return content.BlogPost{}, content.ErrNotFound
}

func (m *memStore) CreateBlogPost(ctx context.Context, b *content.BlogPost) error {
	for _, p := range m.posts {
		if p.Title == b.Title {
			return storage.ErrDuplicateTitle
		}
	}
	s, err := m.slug(ctx, b.Title)
	if err != nil {
		return err
	}
	b.ID = int64(len(m.posts) + 1)
	b.Slug = s
	m.posts = append(m.posts, *b)
	return nil
}

type memInbox struct {
	msgs []content.ContactMessage
}

func (m *memInbox) Submit(_ context.Context, msg *content.ContactMessage) error {
	if err := msg.Normalize(); err != nil {
		return err
	}
	msg.ID = int64(len(m.msgs) + 1)
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memInbox) List(_ context.Context, unreadOnly bool, _ int) ([]content.ContactMessage, error) {
	out := []content.ContactMessage{}
	for _, msg := range m.msgs {
		if !unreadOnly || !msg.IsRead {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memInbox) MarkRead(_ context.Context, id int64) error {
	for i := range m.msgs {
		if m.msgs[i].ID == id {
			m.msgs[i].IsRead = true
			return nil
		}
	}
	return content.ErrNotFound
}

func newMux() (*http.ServeMux, *memStore, *memInbox) {
	store := &memStore{}
	inbox := &memInbox{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	Register(mux, NewPublicHandler(store, inbox, logger), NewAdminHandler(store, inbox, logger))
	return mux, store, inbox
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestCreateAndFetchPracticeArea(t *testing.T) {
	mux, _, _ := newMux()

	rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/practice-areas", `{"name":"Corporate Law","description":"Company matters"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[content.PracticeArea](t, rr)
	if created.Slug != "corporate-law" {
		t.Fatalf("unexpected slug %q", created.Slug)
	}

	rr = do(t, mux, http.MethodPost, "/api/v1/admin/content/practice-areas", `{"name":"Corporate Law"}`)
	if got := decode[content.PracticeArea](t, rr).Slug; got != "corporate-law-2" {
		t.Fatalf("expected collision suffix, got %q", got)
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/content/practice-areas/corporate-law", "")
	if rr.Code != http.StatusOK || decode[content.PracticeArea](t, rr).Name != "Corporate Law" {
		t.Fatalf("lookup by slug failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/content/practice-areas", "")
	if got := decode[[]content.PracticeArea](t, rr); len(got) != 2 {
		t.Fatalf("expected 2 areas, got %d", len(got))
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/content/practice-areas/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	rr = do(t, mux, http.MethodGet, "/api/v1/content/practice-areas/a/b", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for nested path, got %d", rr.Code)
	}
}

func TestPracticeAreaValidation(t *testing.T) {
	mux, _, _ := newMux()
	rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/practice-areas", `{"name":"  "}`)
	if rr.Code != http.StatusBadRequest || decode[map[string]string](t, rr)["error"] != "name is required" {
		t.Fatalf("expected name error, got %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, mux, http.MethodPost, "/api/v1/admin/content/practice-areas", `{"name":"???"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsluggable name, got %d", rr.Code)
	}
}

func TestAddImageToUnknownPracticeArea(t *testing.T) {
	mux, _, _ := newMux()
	rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/practice-areas/images", `{"practice_area_id":42,"image_url":"https://cdn.example.com/a.jpg"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestCreateAttorney(t *testing.T) {
	mux, store, _ := newMux()
	rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/attorneys", `{"full_name":"Jane Doe","job_title":"Senior Attorney","specializations":["Corporate"," "]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	a := store.attorneys[0]
	if a.Slug != "jane-doe" || !a.IsActive || len(a.Specializations) != 1 {
		t.Fatalf("unexpected attorney: %+v", a)
	}

	rr = do(t, mux, http.MethodPost, "/api/v1/admin/content/attorneys", `{"full_name":"John","job_title":"Paralegal","email":"nope"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/content/attorneys/jane-doe", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestCreateBlogPostDuplicateTitle(t *testing.T) {
	mux, _, _ := newMux()
	body := `{"title":"Know Your Rights","author":"Jane","excerpt":"Short","content":"Long form"}`
	if rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/blogs", body); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, mux, http.MethodPost, "/api/v1/admin/content/blogs", body); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	rr := do(t, mux, http.MethodGet, "/api/v1/content/blogs/know-your-rights", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestContactFlow(t *testing.T) {
	mux, _, inbox := newMux()

	rr := do(t, mux, http.MethodPost, "/api/v1/content/contact", `{"name":"Grace","email":"grace@example.com","message":"Call me"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]string](t, rr)["message"]; got != contactReceivedMessage {
		t.Fatalf("unexpected message %q", got)
	}

	rr = do(t, mux, http.MethodPost, "/api/v1/content/contact", `{"name":"Grace","email":"bad","message":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodPost, "/api/v1/admin/content/contact-messages/read", `{"id":1}`)
	if rr.Code != http.StatusNoContent || !inbox.msgs[0].IsRead {
		t.Fatalf("mark read failed: %d", rr.Code)
	}
	rr = do(t, mux, http.MethodPost, "/api/v1/admin/content/contact-messages/read", `{"id":9}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/v1/admin/content/contact-messages?unread=true", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[map[string]any](t, rr)["total"]; got != float64(0) {
		t.Fatalf("expected no unread messages, got %v", got)
	}
	rr = do(t, mux, http.MethodGet, "/api/v1/admin/content/contact-messages?unread=maybe", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _, _ := newMux()
	rr := do(t, mux, http.MethodDelete, "/api/v1/content/blogs", "")
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != http.MethodGet {
		t.Fatalf("expected 405 with Allow header, got %d", rr.Code)
	}
}

func TestWriteStoreErrorMapping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cases := []struct {
		err  error
		code int
	}{
		{&content.ValidationError{Field: "name", Message: "name is required"}, http.StatusBadRequest},
		{content.ErrNotFound, http.StatusNotFound},
		{storage.ErrDuplicateTitle, http.StatusConflict},
		{storage.ErrSlugTaken, http.StatusConflict},
		{slugs.ErrEmpty, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeStoreError(rr, logger, "create attorney", tc.err)
		if rr.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rr.Code)
		}
	}
}
