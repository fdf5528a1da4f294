// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ithevyanshu/socialhub/internal/auth"
	"github.com/ithevyanshu/socialhub/internal/middleware"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/session"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents the request body for profile updates.
// Role and password are not updatable through this endpoint; unknown fields
// are ignored.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"fullName,omitempty"`
}

// validateRegister collects field errors for a registration request.
// All failing fields are reported together.
func validateRegister(req RegisterRequest) map[string]string {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(req.Username) == "" {
		fieldErrors["username"] = "Username is required"
	}
	if req.Password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fieldErrors["email"] = "Email is required"
	} else if !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "Email is invalid"
	}
	if strings.TrimSpace(req.FullName) == "" {
		fieldErrors["fullName"] = "Full name is required"
	}
	if req.Role == "" {
		fieldErrors["role"] = "Role is required"
	} else if !model.ValidRole(req.Role) {
		fieldErrors["role"] = "Role must be one of: professional, brand, manager"
	}

	return fieldErrors
}

// Register handles POST /api/register. On success the new user is logged in
// immediately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if fieldErrors := validateRegister(req); len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	ctx := r.Context()

	if _, err := h.queries.GetUserByUsername(ctx, req.Username); err == nil {
		WriteValidationError(w, map[string]string{"username": "Username already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to check username")
		return
	}

	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		WriteValidationError(w, map[string]string{"email": "Email already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Failed to check email")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	user, err := h.queries.CreateUser(ctx, store.CreateUserParams{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
	})
	if err != nil {
		slog.Error("failed to create user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	if err := h.sessions.RenewToken(ctx); err != nil {
		slog.Error("failed to renew session token", "error", err)
		WriteInternalError(w, "Failed to establish session")
		return
	}
	h.sessions.Put(ctx, session.KeyUserID, user.ID)

	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User registered", &user.ID, r.RemoteAddr, map[string]any{
		"username": user.Username,
		"role":     user.Role,
	})

	WriteCreated(w, user)
}

// Login handles POST /api/login. Invalid username and invalid password are
// indistinguishable in the response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	ctx := r.Context()

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			slog.Warn("login attempt on locked account", "username", req.Username, "remaining", remaining)
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				"Account temporarily locked due to failed login attempts", nil)
			return
		}
	}

	user, err := h.queries.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("failed to look up user", "error", err)
			WriteInternalError(w, "Login failed")
			return
		}
		h.recordLoginFailure(r, req.Username)
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		h.recordLoginFailure(r, req.Username)
		WriteUnauthorized(w, "Invalid credentials")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}

	if err := h.sessions.RenewToken(ctx); err != nil {
		slog.Error("failed to renew session token", "error", err)
		WriteInternalError(w, "Failed to establish session")
		return
	}
	h.sessions.Put(ctx, session.KeyUserID, user.ID)

	_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", &user.ID, r.RemoteAddr, nil)

	WriteSuccess(w, user)
}

// recordLoginFailure tracks a failed attempt and logs the auth event.
func (h *Handler) recordLoginFailure(r *http.Request, username string) {
	if h.loginProtection != nil {
		if locked, duration := h.loginProtection.RecordFailedAttempt(username); locked {
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Account locked after failed logins", nil, r.RemoteAddr, map[string]any{
				"username": username,
				"duration": duration.String(),
			})
			return
		}
	}
	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning, "Failed login attempt", nil, r.RemoteAddr, map[string]any{
		"username": username,
	})
}

// Logout handles POST /api/logout. Logging out without a session is not an
// error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDPtr(r)

	if err := h.sessions.Destroy(ctx); err != nil {
		slog.Error("failed to destroy session", "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}

	if userID != nil {
		_ = h.events.LogAuthEvent(ctx, model.EventLevelInfo, "User logged out", userID, r.RemoteAddr, nil)
	}

	WriteSuccess(w, map[string]string{"message": "Logged out"})
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}
	WriteSuccess(w, user)
}

// UpdateProfile handles PATCH /api/user. Only email and full name are
// updatable; role is fixed at registration.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	fieldErrors := make(map[string]string)
	email := user.Email
	fullName := user.FullName

	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			fieldErrors["email"] = "Email cannot be empty"
		} else if !strings.Contains(*req.Email, "@") {
			fieldErrors["email"] = "Email is invalid"
		} else {
			email = *req.Email
		}
	}
	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			fieldErrors["fullName"] = "Full name cannot be empty"
		} else {
			fullName = *req.FullName
		}
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	if req.Email != nil && email != user.Email {
		if existing, err := h.queries.GetUserByEmail(r.Context(), email); err == nil && existing.ID != user.ID {
			WriteValidationError(w, map[string]string{"email": "Email already exists"})
			return
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			WriteInternalError(w, "Failed to check email")
			return
		}
	}

	updated, err := h.queries.UpdateUserProfile(r.Context(), store.UpdateUserProfileParams{
		Email:    email,
		FullName: fullName,
		ID:       user.ID,
	})
	if err != nil {
		slog.Error("failed to update profile", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to update profile")
		return
	}

	_ = h.events.LogUserEvent(r.Context(), model.EventLevelInfo, "Profile updated", &user.ID, r.RemoteAddr, nil)

	WriteSuccess(w, updated)
}
