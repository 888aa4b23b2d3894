// Package adminauth issues admin tokens for the single firm administrator.
package adminauth

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/equitylawandco/lawsite/libs/auth"
	"github.com/equitylawandco/lawsite/libs/httpx"
	"golang.org/x/crypto/bcrypt"
)

const subject = "firm-admin"

var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash keeps an unknown email as slow as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("lawsite-dummy-password"), bcrypt.DefaultCost)

func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type Config struct {
	Email        string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type Handler struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(cfg Config, logger *slog.Logger) *Handler {
	cfg.Email = strings.ToLower(strings.TrimSpace(cfg.Email))
	cfg.PasswordHash = strings.TrimSpace(cfg.PasswordHash)
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
	return &Handler{cfg: cfg, logger: logger, now: time.Now}
}

func (h *Handler) Enabled() bool {
	return h.cfg.Email != "" && h.cfg.PasswordHash != "" && h.cfg.JWTSecret != ""
}

// Verify checks email and password against the configured admin.
func (h *Handler) Verify(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash := []byte(h.cfg.PasswordHash)
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.cfg.Email)) == 1
	if !emailOK {
		hash = dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !emailOK {
		return ErrInvalidCredentials
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	if !h.Enabled() {
		httpx.WriteError(w, http.StatusServiceUnavailable, "admin login is not configured")
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if err := h.Verify(req.Email, req.Password); err != nil {
		h.logger.Warn("admin login rejected", "request_id", httpx.RequestIDFromContext(r.Context()))
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.SignHS256(h.cfg.JWTSecret, subject, h.cfg.Email, auth.RoleAdmin, h.cfg.TokenTTL, h.now())
	if err != nil {
		h.logger.Error("failed to issue admin token", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.cfg.TokenTTL / time.Second),
	})
}
