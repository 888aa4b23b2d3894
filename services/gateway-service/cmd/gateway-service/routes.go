package main

import (
	"embed"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/equitylawandco/lawsite/libs/auth"
	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/gateway-service/internal/adminauth"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed assets/gateway.v1.yaml
var openAPISpec embed.FS

// Headers the gateway sets for upstreams; inbound copies are dropped.
const (
	headerAdminSubject = "X-Admin-Subject"
	headerAdminEmail   = "X-Admin-Email"
	headerRole         = "X-Role"
)

type upstreams struct {
	booking *url.URL
	content *url.URL
}

func newProxy(target *url.URL, logger *slog.Logger) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = otelhttp.NewTransport(http.DefaultTransport)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("upstream request failed", "err", err, "upstream", target.Host, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return proxy
}

func registerRoutes(mux *http.ServeMux, up upstreams, jwtSecret string, login *adminauth.Handler, logger *slog.Logger) {
	bookingProxy := newProxy(up.booking, logger)
	contentProxy := newProxy(up.content, logger)
	admin := func(next http.Handler) http.Handler {
		return requireAuth(requireRole(next, auth.RoleAdmin), jwtSecret)
	}

	registerProxy(mux, "/api/v1/appointments", stripIdentity(bookingProxy))
	registerProxy(mux, "/api/v1/content", stripIdentity(contentProxy))
	registerProxy(mux, "/api/v1/admin/appointments", admin(bookingProxy))
	registerProxy(mux, "/api/v1/admin/schedule", admin(bookingProxy))
	registerProxy(mux, "/api/v1/admin/content", admin(contentProxy))

	mux.HandleFunc("/api/v1/auth/login", login.Login)

	mux.HandleFunc("/openapi", func(w http.ResponseWriter, _ *http.Request) {
		data, err := openAPISpec.ReadFile("assets/gateway.v1.yaml")
		if err != nil {
			http.Error(w, "openapi not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
}

func registerProxy(mux *http.ServeMux, prefix string, handler http.Handler) {
	if !strings.HasSuffix(prefix, "/") {
		mux.Handle(prefix, handler)
		mux.Handle(prefix+"/", handler)
		return
	}
	mux.Handle(prefix, handler)
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func dropIdentityHeaders(h http.Header) {
	h.Del(headerAdminSubject)
	h.Del(headerAdminEmail)
	h.Del(headerRole)
}

// stripIdentity removes identity headers a client may have forged on public routes.
func stripIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dropIdentityHeaders(r.Header)
		next.ServeHTTP(w, r)
	})
}

func requireAuth(next http.Handler, jwtSecret string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}
		claims, err := auth.ParseAndVerifyHS256(token, jwtSecret)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		dropIdentityHeaders(r.Header)
		r.Header.Set(headerAdminSubject, claims.Subject)
		r.Header.Set(headerAdminEmail, claims.Email)
		r.Header.Set(headerRole, claims.Role)
		next.ServeHTTP(w, r)
	})
}

func requireRole(next http.Handler, roles ...string) http.Handler {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get(headerRole)
		if _, ok := allowed[role]; !ok {
			httpx.WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
