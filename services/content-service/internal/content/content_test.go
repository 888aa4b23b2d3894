package content

import (
	"errors"
	"strings"
	"testing"
)

func field(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Field
}

func TestContactMessageNormalize(t *testing.T) {
	m := ContactMessage{Name: "  Grace ", Email: " grace@example.com ", Message: " hello "}
	if err := m.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if m.Name != "Grace" || m.Email != "grace@example.com" || m.Message != "hello" {
		t.Fatalf("fields not trimmed: %+v", m)
	}

	tests := []struct {
		msg  ContactMessage
		want string
	}{
		{ContactMessage{Email: "a@example.com", Message: "x"}, "name"},
		{ContactMessage{Name: "A", Email: "Ada <a@example.com>", Message: "x"}, "email"},
		{ContactMessage{Name: "A", Email: "a@example.com"}, "message"},
		{ContactMessage{Name: "A", Email: "a@example.com", Phone: strings.Repeat("1", 21), Message: "x"}, "phone"},
		{ContactMessage{Name: "A", Email: "a@example.com", Message: strings.Repeat("x", 5001)}, "message"},
	}
	for _, tt := range tests {
		msg := tt.msg
		if got := field(t, msg.Normalize()); got != tt.want {
			t.Fatalf("expected %s error, got %s", tt.want, got)
		}
	}
}

func TestAttorneyNormalize(t *testing.T) {
	a := Attorney{FullName: "Jane", JobTitle: "Partner", Specializations: []string{" Tax ", "", "Corporate"}}
	if err := a.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(a.Specializations) != 2 || a.Specializations[0] != "Tax" {
		t.Fatalf("unexpected specializations: %v", a.Specializations)
	}
	a = Attorney{FullName: "Jane"}
	if got := field(t, a.Normalize()); got != "job_title" {
		t.Fatalf("expected job_title error, got %s", got)
	}
	a = Attorney{FullName: "Jane", JobTitle: "Partner", SortOrder: -1}
	if got := field(t, a.Normalize()); got != "order" {
		t.Fatalf("expected order error, got %s", got)
	}
}

func TestBlogPostNormalize(t *testing.T) {
	b := BlogPost{Title: "T", Author: "A", Excerpt: strings.Repeat("e", 501), Content: "c"}
	if got := field(t, b.Normalize()); got != "excerpt" {
		t.Fatalf("expected excerpt error, got %s", got)
	}
	b = BlogPost{Title: "T", Author: "A", Excerpt: "e"}
	if got := field(t, b.Normalize()); got != "content" {
		t.Fatalf("expected content error, got %s", got)
	}
}

func TestPracticeAreaImageNormalize(t *testing.T) {
	img := PracticeAreaImage{ImageURL: "x"}
	if got := field(t, img.Normalize()); got != "practice_area_id" {
		t.Fatalf("expected practice_area_id error, got %s", got)
	}
}
