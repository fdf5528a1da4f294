// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/ithevyanshu/socialhub/internal/model"
)

func TestRegister_EstablishesSession(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	user := registerUser(t, ts, client, "alice", model.RoleProfessional)
	if user.Username != "alice" || user.Role != model.RoleProfessional {
		t.Errorf("unexpected user %+v", user)
	}

	// The registration response must establish a session
	resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/user after register: status %d", resp.StatusCode)
	}
	var current model.User
	decodeData(t, resp, &current)
	if current.ID != user.ID {
		t.Errorf("current user ID = %d, want %d", current.ID, user.ID)
	}
}

func TestRegister_ValidationListsAllFields(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/register", RegisterRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	detail := decodeError(t, resp)
	if detail.Code != "validation_error" {
		t.Errorf("error code = %q, want validation_error", detail.Code)
	}
	for _, field := range []string{"username", "password", "email", "fullName", "role"} {
		if _, ok := detail.Details[field]; !ok {
			t.Errorf("missing validation detail for %q: %v", field, detail.Details)
		}
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/register", RegisterRequest{
		Username: "bob",
		Password: "password123",
		Email:    "bob@example.com",
		FullName: "Bob",
		Role:     "admin",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	detail := decodeError(t, resp)
	if _, ok := detail.Details["role"]; !ok {
		t.Errorf("expected role validation error, got %v", detail.Details)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, newClient(t), "alice", model.RoleBrand)

	resp := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/register", RegisterRequest{
		Username: "alice",
		Password: "password123",
		Email:    "other@example.com",
		FullName: "Other Alice",
		Role:     model.RoleBrand,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	detail := decodeError(t, resp)
	if _, ok := detail.Details["username"]; !ok {
		t.Errorf("expected username validation error, got %v", detail.Details)
	}
}

func TestLogin_Success(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, newClient(t), "alice", model.RoleProfessional)

	client := newClient(t)
	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/login", LoginRequest{
		Username: "alice",
		Password: "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var user model.User
	decodeData(t, resp, &user)
	if user.Username != "alice" {
		t.Errorf("logged in as %q, want alice", user.Username)
	}

	resp = doJSON(t, client, http.MethodGet, ts.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /api/user after login: status %d", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestLogin_GenericFailure(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, newClient(t), "alice", model.RoleProfessional)

	// Wrong password and unknown user must be indistinguishable
	wrongPassword := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/login", LoginRequest{
		Username: "alice", Password: "not-the-password",
	})
	unknownUser := doJSON(t, newClient(t), http.MethodPost, ts.URL+"/api/login", LoginRequest{
		Username: "nobody", Password: "password123",
	})

	if wrongPassword.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", wrongPassword.StatusCode)
	}
	if unknownUser.StatusCode != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d, want 401", unknownUser.StatusCode)
	}

	a := decodeError(t, wrongPassword)
	b := decodeError(t, unknownUser)
	if a.Message != b.Message || a.Code != b.Code {
		t.Errorf("failure responses differ: %+v vs %+v", a, b)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)
	registerUser(t, ts, client, "alice", model.RoleBrand)

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first logout status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// A second logout with no session is still a 200
	resp = doJSON(t, client, http.MethodPost, ts.URL+"/api/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("second logout status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = doJSON(t, client, http.MethodGet, ts.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /api/user after logout: status %d, want 401", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestCurrentUser_Unauthenticated(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, newClient(t), http.MethodGet, ts.URL+"/api/user", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	detail := decodeError(t, resp)
	if detail.Code != "unauthorized" {
		t.Errorf("error code = %q, want unauthorized", detail.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)
	user := registerUser(t, ts, client, "alice", model.RoleProfessional)

	newEmail := "alice.new@example.com"
	newName := "Alice Cooper"
	resp := doJSON(t, client, http.MethodPatch, ts.URL+"/api/user", UpdateProfileRequest{
		Email:    &newEmail,
		FullName: &newName,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var updated model.User
	decodeData(t, resp, &updated)
	if updated.Email != newEmail || updated.FullName != newName {
		t.Errorf("profile not updated: %+v", updated)
	}
	if updated.Role != user.Role {
		t.Errorf("role changed from %q to %q", user.Role, updated.Role)
	}
}

func TestUpdateProfile_RoleIgnored(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)
	registerUser(t, ts, client, "alice", model.RoleBrand)

	// A role field in the body must be silently ignored
	resp := doJSON(t, client, http.MethodPatch, ts.URL+"/api/user", map[string]any{
		"role":     model.RoleManager,
		"fullName": "Still A Brand",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var updated model.User
	decodeData(t, resp, &updated)
	if updated.Role != model.RoleBrand {
		t.Errorf("role = %q, want brand (immutable)", updated.Role)
	}
	if updated.FullName != "Still A Brand" {
		t.Errorf("fullName = %q, want updated value", updated.FullName)
	}
}

func TestUserResponse_OmitsPassword(t *testing.T) {
	ts := newTestServer(t)
	client := newClient(t)
	registerUser(t, ts, client, "alice", model.RoleProfessional)

	resp := doJSON(t, client, http.MethodGet, ts.URL+"/api/user", nil)
	var raw map[string]any
	decodeData(t, resp, &raw)

	for _, key := range []string{"password", "passwordHash", "password_hash"} {
		if _, ok := raw[key]; ok {
			t.Errorf("response exposes %q", key)
		}
	}
}
