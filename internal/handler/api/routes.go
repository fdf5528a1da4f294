// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ithevyanshu/socialhub/internal/middleware"
)

// Routes returns the /api route tree. The caller is responsible for session
// loading; everything else (user loading, auth requirements, login
// throttling) is wired here.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.LoadUser(h.sessions, h.db))

	r.Get("/healthz", h.Health)

	// Public auth endpoints
	r.Post("/register", h.Register)
	if h.loginProtection != nil {
		r.With(h.loginProtection.Middleware()).Post("/login", h.Login)
	} else {
		r.Post("/login", h.Login)
	}
	r.Post("/logout", h.Logout)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser())

		r.Get("/user", h.CurrentUser)
		r.Patch("/user", h.UpdateProfile)

		r.Get("/accounts", h.ListAccounts)
		r.Post("/accounts", h.CreateAccount)
		r.Get("/accounts/{id}", h.GetAccount)
		r.Patch("/accounts/{id}", h.UpdateAccount)

		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/{id}", h.GetPost)
		r.Patch("/posts/{id}", h.UpdatePost)

		r.Get("/analytics", h.ListAnalytics)
		r.Post("/analytics", h.CreateAnalytics)

		r.With(middleware.RequireManager()).Get("/managed-users", h.ManagedUsers)
	})

	return r
}
