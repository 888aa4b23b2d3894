package adminauth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/equitylawandco/lawsite/libs/auth"
	"golang.org/x/crypto/bcrypt"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return NewHandler(Config{
		Email:        "Admin@EquityLawAndCo.com",
		PasswordHash: string(hash),
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func login(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	return rr
}

func TestLoginIssuesAdminToken(t *testing.T) {
	h := newHandler(t)
	rr := login(h, `{"email":"admin@equitylawandco.com","password":"s3cret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	claims, err := auth.ParseAndVerifyHS256(resp.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Role != auth.RoleAdmin || claims.Email != "admin@equitylawandco.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHandler(t)
	for _, body := range []string{
		`{"email":"admin@equitylawandco.com","password":"wrong"}`,
		`{"email":"someone@example.com","password":"s3cret"}`,
	} {
		if rr := login(h, body); rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, rr.Code)
		}
	}
	if rr := login(h, `{"email":"","password":""}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginDisabledWithoutHash(t *testing.T) {
	h := NewHandler(Config{Email: "a@example.com", JWTSecret: "s"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if rr := login(h, `{"email":"a@example.com","password":"x"}`); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestHashPasswordVerifies(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h := NewHandler(Config{Email: "a@example.com", PasswordHash: hash, JWTSecret: "s"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := h.Verify("A@example.com ", "pw"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
