package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSPolicy lists the browser origins allowed to call the API. An origin
// entry may be exact, "*", or a subdomain pattern like "https://*.equitylawandco.com".
type CORSPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type corsHeaders struct {
	methods string
	headers string
	maxAge  string
}

// WithCORS is a no-op when AllowedOrigins is empty.
func WithCORS(cfg CORSPolicy) Middleware {
	origins := normalizeList(cfg.AllowedOrigins)
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	static := corsHeaders{
		methods: strings.Join(normalizeList(cfg.AllowedMethods), ", "),
		headers: strings.Join(normalizeList(cfg.AllowedHeaders), ", "),
	}
	if secs := int(cfg.MaxAge.Seconds()); secs > 0 {
		static.maxAge = strconv.Itoa(secs)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowOrigin, ok := matchOrigin(origin, origins, cfg.AllowCredentials)
			if origin == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method != http.MethodOptions || r.Header.Get("Access-Control-Request-Method") == "" {
				next.ServeHTTP(w, r)
				return
			}
			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			setIfNotEmpty(h, "Access-Control-Allow-Methods", static.methods)
			setIfNotEmpty(h, "Access-Control-Allow-Headers", static.headers)
			setIfNotEmpty(h, "Access-Control-Max-Age", static.maxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func setIfNotEmpty(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func matchOrigin(origin string, allowed []string, allowCredentials bool) (string, bool) {
	for _, candidate := range allowed {
		switch {
		case candidate == "*":
			if allowCredentials {
				return origin, true
			}
			return "*", true
		case strings.EqualFold(candidate, origin):
			return origin, true
		case matchSubdomain(candidate, origin):
			return origin, true
		}
	}
	return "", false
}

// matchSubdomain reports whether origin fits a "scheme://*.domain" pattern.
// The bare domain itself does not match.
func matchSubdomain(pattern, origin string) bool {
	scheme, rest, ok := strings.Cut(pattern, "://*.")
	if !ok {
		return false
	}
	prefix := scheme + "://"
	if len(origin) <= len(prefix) || !strings.EqualFold(origin[:len(prefix)], prefix) {
		return false
	}
	host := strings.ToLower(origin[len(prefix):])
	return strings.HasSuffix(host, "."+strings.ToLower(rest)) && len(host) > len(rest)+1
}
