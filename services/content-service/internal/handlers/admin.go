package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/equitylawandco/lawsite/libs/httpx"
	"github.com/equitylawandco/lawsite/services/content-service/internal/content"
)

// AdminHandler creates content and manages the contact inbox. The gateway
// only routes here for admin tokens.
type AdminHandler struct {
	store   Store
	contact ContactInbox
	logger  *slog.Logger
}

func NewAdminHandler(store Store, contact ContactInbox, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: store, contact: contact, logger: logger}
}

type practiceAreaRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	FeaturedImageURL string `json:"featured_image_url"`
}

func (h *AdminHandler) CreatePracticeArea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req practiceAreaRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	p := content.PracticeArea{Name: req.Name, Description: req.Description, FeaturedImageURL: req.FeaturedImageURL}
	if err := p.Normalize(); err != nil {
		writeStoreError(w, h.logger, "create practice area", err)
		return
	}
	if err := h.store.CreatePracticeArea(r.Context(), &p); err != nil {
		writeStoreError(w, h.logger, "create practice area", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

type imageRequest struct {
	PracticeAreaID int64  `json:"practice_area_id"`
	ImageURL       string `json:"image_url"`
	Caption        string `json:"caption"`
	Order          int    `json:"order"`
}

func (h *AdminHandler) AddPracticeAreaImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req imageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	img := content.PracticeAreaImage{PracticeAreaID: req.PracticeAreaID, ImageURL: req.ImageURL, Caption: req.Caption, SortOrder: req.Order}
	if err := img.Normalize(); err != nil {
		writeStoreError(w, h.logger, "add practice area image", err)
		return
	}
	if err := h.store.AddPracticeAreaImage(r.Context(), &img); err != nil {
		writeStoreError(w, h.logger, "add practice area image", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, img)
}

type attorneyRequest struct {
	FullName        string   `json:"full_name"`
	JobTitle        string   `json:"job_title"`
	Bio             string   `json:"bio"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	PhotoURL        string   `json:"photo_url"`
	Order           int      `json:"order"`
	IsActive        *bool    `json:"is_active"`
	Specializations []string `json:"specializations"`
}

func (h *AdminHandler) CreateAttorney(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req attorneyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	a := content.Attorney{
		FullName:        req.FullName,
		JobTitle:        req.JobTitle,
		Bio:             req.Bio,
		Email:           req.Email,
		Phone:           req.Phone,
		PhotoURL:        req.PhotoURL,
		SortOrder:       req.Order,
		IsActive:        isActive,
		Specializations: req.Specializations,
	}
	if err := a.Normalize(); err != nil {
		writeStoreError(w, h.logger, "create attorney", err)
		return
	}
	if err := h.store.CreateAttorney(r.Context(), &a); err != nil {
		writeStoreError(w, h.logger, "create attorney", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

type blogRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Excerpt     string `json:"excerpt"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	IsPublished *bool  `json:"is_published"`
}

func (h *AdminHandler) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req blogRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	b := content.BlogPost{
		Title:       req.Title,
		Author:      req.Author,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Category:    req.Category,
		IsPublished: published,
	}
	if err := b.Normalize(); err != nil {
		writeStoreError(w, h.logger, "create blog post", err)
		return
	}
	if err := h.store.CreateBlogPost(r.Context(), &b); err != nil {
		writeStoreError(w, h.logger, "create blog post", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *AdminHandler) ContactMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	unread := false
	if raw := strings.TrimSpace(q.Get("unread")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid unread")
			return
		}
		unread = v
	}
	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}
	msgs, err := h.contact.List(r.Context(), unread, limit)
	if err != nil {
		writeStoreError(w, h.logger, "list contact messages", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs, "total": len(msgs)})
}

func (h *AdminHandler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		ID int64 `json:"id"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.contact.MarkRead(r.Context(), req.ID); err != nil {
		writeStoreError(w, h.logger, "mark contact message read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
