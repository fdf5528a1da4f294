// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ithevyanshu/socialhub/internal/access"
	"github.com/ithevyanshu/socialhub/internal/middleware"
	"github.com/ithevyanshu/socialhub/internal/model"
)

// ManagedUsers handles GET /api/managed-users. Managers only: lists the
// distinct users owning accounts the caller supervises.
func (h *Handler) ManagedUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	users, err := h.access.ManagedUsers(r.Context(), *user)
	if err != nil {
		if errors.Is(err, access.ErrForbidden) {
			WriteForbidden(w, "Manager role required")
			return
		}
		slog.Error("failed to list managed users", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list managed users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	WriteSuccess(w, users)
}
