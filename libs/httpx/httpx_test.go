package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }
	h := rl.Middleware()(okHandler())

	for i := 0; i < 2; i++ {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rw, req)
		if rw.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rw.Code)
		}
	}

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}
	if rw.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	now = now.Add(time.Minute + time.Second)
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", rw.Code)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	rl := NewRedisRateLimiter(rdb, 1, time.Minute, "test")
	h := rl.Middleware(slog.Default(), false)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if rw.Header().Get("X-RateLimit-Limit") != "1" || rw.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected limit headers %v", rw.Header())
	}
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rw.Code)
	}
	if rw.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rw.Header().Get("Retry-After"))
	}
	if !mr.Exists("test:203.0.113.7") {
		t.Fatal("expected counter key for forwarded client ip")
	}
	if ttl := mr.TTL("test:203.0.113.7"); ttl <= 0 {
		t.Fatalf("expected expiry on counter key, got %s", ttl)
	}
}

func TestRedisRateLimiterFailOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	mr.Close()

	rl := NewRedisRateLimiter(rdb, 1, time.Minute, "test")

	rw := httptest.NewRecorder()
	rl.Middleware(slog.Default(), true)(okHandler()).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("fail-open: expected 200, got %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	rl.Middleware(slog.Default(), false)(okHandler()).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("fail-closed: expected 503, got %d", rw.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := WithCORS(CORSPolicy{
		AllowedOrigins: []string{"https://equitylawandco.com"},
		AllowedMethods: []string{"GET", "POST"},
		MaxAge:         10 * time.Minute,
	})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/appointments", nil)
	req.Header.Set("Origin", "https://equitylawandco.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rw.Code)
	}
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "https://equitylawandco.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if got := rw.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("unexpected max age %q", got)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("Origin", "https://evil.example")
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, other)
	if rw.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected CORS header for unknown origin")
	}
}

func TestCORSSubdomainPattern(t *testing.T) {
	h := WithCORS(CORSPolicy{AllowedOrigins: []string{"https://*.equitylawandco.com"}})(okHandler())

	for origin, want := range map[string]bool{
		"https://www.equitylawandco.com":   true,
		"https://admin.equitylawandco.com": true,
		"https://equitylawandco.com":       false,
		"http://www.equitylawandco.com":    false,
		"https://evilequitylawandco.com":   false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", origin)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		if got := rw.Header().Get("Access-Control-Allow-Origin") == origin; got != want {
			t.Fatalf("origin %s: allowed=%v, want %v", origin, got, want)
		}
		if rw.Code != http.StatusOK {
			t.Fatalf("origin %s: expected pass-through 200, got %d", origin, rw.Code)
		}
	}
}

func TestRequestIDRejectsMalformedInbound(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id\twith spaces")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if seen == "" || seen == "bad id\twith spaces" {
		t.Fatalf("expected a fresh request id, got %q", seen)
	}
	if req.Header.Get(RequestIDHeader) != seen || rw.Header().Get(RequestIDHeader) != seen {
		t.Fatal("request id not propagated to upstream request and response")
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		WriteError(w, http.StatusBadRequest, "bad")
	})
	h := Chain(inner, WithRequestID, WithAccessLog(logger))

	rw := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	h.ServeHTTP(rw, req)

	if seen != "req-123" {
		t.Fatalf("expected request id propagated, got %q", seen)
	}
	if rw.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatal("expected request id echoed")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["status"].(float64) != 400 || entry["request_id"] != "req-123" {
		t.Fatalf("unexpected log entry %v", entry)
	}
}

func TestWithRecover(t *testing.T) {
	h := WithRecover(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "Ada" {
		t.Fatalf("unexpected decode result %v %q", err, dst.Name)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ada","extra":1}`))
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatal("expected unknown field rejection")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	if err := DecodeJSON(req, &dst); err == nil || err.Error() != "request body is empty" {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestChainSkipsNil(t *testing.T) {
	h := Chain(okHandler(), nil, WithRequestID)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
}
