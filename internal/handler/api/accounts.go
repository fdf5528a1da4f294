// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ithevyanshu/socialhub/internal/access"
	"github.com/ithevyanshu/socialhub/internal/middleware"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// CreateAccountRequest represents the request body for connecting a social
// account. The owner is always the authenticated user; a userId in the body
// is ignored.
type CreateAccountRequest struct {
	Platform    string `json:"platform"`
	AccountName string `json:"accountName"`
	AccountID   string `json:"accountId"`
	ManagerID   *int64 `json:"managerId,omitempty"`
	Followers   int64  `json:"followers"`
	IsConnected *bool  `json:"isConnected,omitempty"`
}

// UpdateAccountRequest represents the request body for a partial account
// update. Ownership is immutable; a userId in the body is ignored.
type UpdateAccountRequest struct {
	AccountName *string `json:"accountName,omitempty"`
	ManagerID   *int64  `json:"managerId,omitempty"`
	Followers   *int64  `json:"followers,omitempty"`
	IsConnected *bool   `json:"isConnected,omitempty"`
}

// ListAccounts handles GET /api/accounts. Returns the accounts in the
// caller's visibility scope.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	accounts, err := h.access.AccountScope(r.Context(), *user)
	if err != nil {
		slog.Error("failed to list accounts", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []model.SocialAccount{}
	}
	WriteSuccess(w, accounts)
}

// validateManagerAssignment verifies that the referenced user exists and
// holds the manager role. Writes the error response on failure.
func (h *Handler) validateManagerAssignment(w http.ResponseWriter, r *http.Request, managerID int64) bool {
	manager, err := h.queries.GetUserByID(r.Context(), managerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteValidationError(w, map[string]string{"managerId": "Manager not found"})
		} else {
			WriteInternalError(w, "Failed to verify manager")
		}
		return false
	}
	if !manager.IsManager() {
		WriteValidationError(w, map[string]string{"managerId": "Assigned user is not a manager"})
		return false
	}
	return true
}

// CreateAccount handles POST /api/accounts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateAccountRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if req.Platform == "" {
		fieldErrors["platform"] = "Platform is required"
	} else if !model.ValidPlatform(req.Platform) {
		fieldErrors["platform"] = "Platform must be one of: instagram, facebook, youtube, x, linkedin"
	}
	if strings.TrimSpace(req.AccountName) == "" {
		fieldErrors["accountName"] = "Account name is required"
	}
	if strings.TrimSpace(req.AccountID) == "" {
		fieldErrors["accountId"] = "Account ID is required"
	}
	if req.Followers < 0 {
		fieldErrors["followers"] = "Followers cannot be negative"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if req.ManagerID != nil && !h.validateManagerAssignment(w, r, *req.ManagerID) {
		return
	}

	params := store.CreateSocialAccountParams{
		UserID:      user.ID,
		Platform:    req.Platform,
		AccountName: req.AccountName,
		AccountID:   req.AccountID,
		Followers:   req.Followers,
		IsConnected: req.IsConnected == nil || *req.IsConnected,
	}
	if req.ManagerID != nil {
		params.ManagerID = sql.NullInt64{Int64: *req.ManagerID, Valid: true}
	}

	account, err := h.queries.CreateSocialAccount(r.Context(), params)
	if err != nil {
		slog.Error("failed to create account", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to create account")
		return
	}

	managerID := int64(0)
	if req.ManagerID != nil {
		managerID = *req.ManagerID
	}
	h.access.InvalidateScope(r.Context(), user.ID, managerID)

	_ = h.events.LogAccountEvent(r.Context(), model.EventLevelInfo, "Social account connected", &user.ID, r.RemoteAddr, map[string]any{
		"account_id": account.ID,
		"platform":   account.Platform,
	})

	WriteCreated(w, account)
}

// requireViewableAccount loads an account by the {id} URL parameter and
// enforces the single-account access rule: only the owner or the assigned
// manager may proceed.
func (h *Handler) requireViewableAccount(w http.ResponseWriter, r *http.Request, user model.User) (model.SocialAccount, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid account ID", nil)
		return model.SocialAccount{}, false
	}

	account, err := h.queries.GetSocialAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Account not found")
		} else {
			WriteInternalError(w, "Failed to retrieve account")
		}
		return model.SocialAccount{}, false
	}

	if !access.CanViewAccount(user, account) {
		WriteForbidden(w, "You do not have access to this account")
		return model.SocialAccount{}, false
	}

	return account, true
}

// GetAccount handles GET /api/accounts/{id}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	account, ok := h.requireViewableAccount(w, r, *user)
	if !ok {
		return
	}
	WriteSuccess(w, account)
}

// UpdateAccount handles PATCH /api/accounts/{id}.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	account, ok := h.requireViewableAccount(w, r, *user)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	if req.AccountName != nil && strings.TrimSpace(*req.AccountName) == "" {
		fieldErrors["accountName"] = "Account name cannot be empty"
	}
	if req.Followers != nil && *req.Followers < 0 {
		fieldErrors["followers"] = "Followers cannot be negative"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if req.ManagerID != nil && !h.validateManagerAssignment(w, r, *req.ManagerID) {
		return
	}

	updated, err := h.queries.UpdateSocialAccount(r.Context(), store.UpdateSocialAccountParams{
		ManagerID:   req.ManagerID,
		AccountName: req.AccountName,
		Followers:   req.Followers,
		IsConnected: req.IsConnected,
		ID:          account.ID,
	})
	if err != nil {
		slog.Error("failed to update account", "account_id", account.ID, "error", err)
		WriteInternalError(w, "Failed to update account")
		return
	}

	// Invalidate every scope the change may touch: owner, previous manager,
	// new manager.
	oldManager, newManager := int64(0), int64(0)
	if account.ManagerID != nil {
		oldManager = *account.ManagerID
	}
	if req.ManagerID != nil {
		newManager = *req.ManagerID
	}
	h.access.InvalidateScope(r.Context(), account.UserID, oldManager, newManager)

	_ = h.events.LogAccountEvent(r.Context(), model.EventLevelInfo, "Social account updated", &user.ID, r.RemoteAddr, map[string]any{
		"account_id": account.ID,
	})

	WriteSuccess(w, updated)
}
