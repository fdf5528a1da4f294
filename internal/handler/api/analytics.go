// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ithevyanshu/socialhub/internal/access"
	"github.com/ithevyanshu/socialhub/internal/middleware"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// CreateAnalyticsRequest represents the request body for recording an
// analytics snapshot.
type CreateAnalyticsRequest struct {
	SocialAccountID int64          `json:"socialAccountId"`
	Date            *time.Time     `json:"date,omitempty"`
	Followers       int64          `json:"followers"`
	Engagement      int64          `json:"engagement"`
	Reach           int64          `json:"reach"`
	Posts           int64          `json:"posts"`
	Data            model.Metadata `json:"data,omitempty"`
}

// ListAnalytics handles GET /api/analytics. Returns snapshots for every
// account in the caller's scope, most recent date first.
func (h *Handler) ListAnalytics(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	scopeIDs, err := h.access.ScopeIDs(r.Context(), *user)
	if err != nil {
		slog.Error("failed to resolve account scope", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list analytics")
		return
	}

	entries, err := h.queries.ListAnalyticsByAccountIDs(r.Context(), scopeIDs)
	if err != nil {
		slog.Error("failed to list analytics", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list analytics")
		return
	}
	if entries == nil {
		entries = []model.Analytics{}
	}
	WriteSuccess(w, entries)
}

// CreateAnalytics handles POST /api/analytics. Snapshots are append-only;
// there is no update or delete.
func (h *Handler) CreateAnalytics(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateAnalyticsRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if req.SocialAccountID == 0 {
		fieldErrors["socialAccountId"] = "Social account ID is required"
	}
	if req.Followers < 0 {
		fieldErrors["followers"] = "Followers cannot be negative"
	}
	if req.Engagement < 0 {
		fieldErrors["engagement"] = "Engagement cannot be negative"
	}
	if req.Reach < 0 {
		fieldErrors["reach"] = "Reach cannot be negative"
	}
	if req.Posts < 0 {
		fieldErrors["posts"] = "Posts cannot be negative"
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

	if !access.CanViewAccount(*user, account) {
		WriteForbidden(w, "You do not have access to this account")
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	entry, err := h.queries.CreateAnalytics(r.Context(), store.CreateAnalyticsParams{
		SocialAccountID: account.ID,
		Date:            date,
		Followers:       req.Followers,
		Engagement:      req.Engagement,
		Reach:           req.Reach,
		Posts:           req.Posts,
		Data:            req.Data,
	})
	if err != nil {
		slog.Error("failed to create analytics", "account_id", account.ID, "error", err)
		WriteInternalError(w, "Failed to record analytics")
		return
	}

	WriteCreated(w, entry)
}
