// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ithevyanshu/socialhub/internal/access"
	"github.com/ithevyanshu/socialhub/internal/middleware"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	SocialAccountID int64      `json:"socialAccountId"`
	Content         string     `json:"content"`
	MediaURL        *string    `json:"mediaUrl,omitempty"`
	ScheduledFor    *time.Time `json:"scheduledFor,omitempty"`
	Status          string     `json:"status,omitempty"`
}

// UpdatePostRequest represents the request body for a partial post update.
// The owning account cannot change.
type UpdatePostRequest struct {
	Content      *string    `json:"content,omitempty"`
	MediaURL     *string    `json:"mediaUrl,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Reach        *int64     `json:"reach,omitempty"`
	Engagement   *int64     `json:"engagement,omitempty"`
	Clicks       *int64     `json:"clicks,omitempty"`
}

// ListPosts handles GET /api/posts. An optional ?status= query narrows the
// result; posts are returned for every account in the caller's scope, most
// recently scheduled first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidPostStatus(status) {
		WriteBadRequest(w, "Invalid status filter", map[string]string{
			"status": "Status must be one of: draft, scheduled, published",
		})
		return
	}

	scopeIDs, err := h.access.ScopeIDs(r.Context(), *user)
	if err != nil {
		slog.Error("failed to resolve account scope", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}

	posts, err := h.queries.ListPostsByAccountIDs(r.Context(), scopeIDs, status)
	if err != nil {
		slog.Error("failed to list posts", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	WriteSuccess(w, posts)
}

// CreatePost handles POST /api/posts. The caller must own the target account
// or be its assigned manager; anything else is rejected before any row is
// written.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreatePostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if req.SocialAccountID == 0 {
		fieldErrors["socialAccountId"] = "Social account ID is required"
	}
	if strings.TrimSpace(req.Content) == "" {
		fieldErrors["content"] = "Content is required"
	}
	if req.Status != "" && !model.ValidPostStatus(req.Status) {
		fieldErrors["status"] = "Status must be one of: draft, scheduled, published"
	}
	if req.Status == model.PostStatusScheduled && req.ScheduledFor == nil {
		fieldErrors["scheduledFor"] = "Scheduled posts require a scheduled time"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	account, err := h.queries.GetSocialAccount(r.Context(), req.SocialAccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Account not found")
		} else {
			WriteInternalError(w, "Failed to retrieve account")
		}
		return
	}

	if !access.CanPostTo(*user, account) {
		WriteForbidden(w, "You do not have access to this account")
		return
	}

	params := store.CreatePostParams{
		SocialAccountID: account.ID,
		Content:         req.Content,
		Status:          req.Status,
	}
	if req.MediaURL != nil {
		params.MediaURL = sql.NullString{String: *req.MediaURL, Valid: true}
	}
	if req.ScheduledFor != nil {
		params.ScheduledFor = sql.NullTime{Time: *req.ScheduledFor, Valid: true}
	}
	if req.Status == model.PostStatusPublished {
		params.PublishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	post, err := h.queries.CreatePost(r.Context(), params)
	if err != nil {
		slog.Error("failed to create post", "account_id", account.ID, "error", err)
		WriteInternalError(w, "Failed to create post")
		return
	}

	_ = h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post created", &user.ID, r.RemoteAddr, map[string]any{
		"post_id":    post.ID,
		"account_id": account.ID,
		"status":     post.Status,
	})

	WriteCreated(w, post)
}

// requireViewablePost loads a post by the {id} URL parameter and enforces
// access through its owning account.
func (h *Handler) requireViewablePost(w http.ResponseWriter, r *http.Request, user model.User) (model.Post, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return model.Post{}, false
	}

	post, err := h.queries.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Post not found")
		} else {
			WriteInternalError(w, "Failed to retrieve post")
		}
		return model.Post{}, false
	}

	account, err := h.queries.GetSocialAccount(r.Context(), post.SocialAccountID)
	if err != nil {
		WriteInternalError(w, "Failed to retrieve account")
		return model.Post{}, false
	}

	if !access.CanViewAccount(user, account) {
		WriteForbidden(w, "You do not have access to this post")
		return model.Post{}, false
	}

	return post, true
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	post, ok := h.requireViewablePost(w, r, *user)
	if !ok {
		return
	}
	WriteSuccess(w, post)
}

// UpdatePost handles PATCH /api/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	post, ok := h.requireViewablePost(w, r, *user)
	if !ok {
		return
	}

	var req UpdatePostRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		fieldErrors["content"] = "Content cannot be empty"
	}
	if req.Status != nil && !model.ValidPostStatus(*req.Status) {
		fieldErrors["status"] = "Status must be one of: draft, scheduled, published"
	}
	if req.Status != nil && *req.Status == model.PostStatusScheduled &&
		req.ScheduledFor == nil && post.ScheduledFor == nil {
		fieldErrors["scheduledFor"] = "Scheduled posts require a scheduled time"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	params := store.UpdatePostParams{
		Content:      req.Content,
		MediaURL:     req.MediaURL,
		ScheduledFor: req.ScheduledFor,
		Status:       req.Status,
		Reach:        req.Reach,
		Engagement:   req.Engagement,
		Clicks:       req.Clicks,
		ID:           post.ID,
	}
	if req.Status != nil && *req.Status == model.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now()
		params.PublishedAt = &now
	}

	updated, err := h.queries.UpdatePost(r.Context(), params)
	if err != nil {
		slog.Error("failed to update post", "post_id", post.ID, "error", err)
		WriteInternalError(w, "Failed to update post")
		return
	}

	_ = h.events.LogPostEvent(r.Context(), model.EventLevelInfo, "Post updated", &user.ID, r.RemoteAddr, map[string]any{
		"post_id": post.ID,
	})

	WriteSuccess(w, updated)
}
