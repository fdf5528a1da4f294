// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ithevyanshu/socialhub/internal/access"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/session"
	"github.com/ithevyanshu/socialhub/internal/testutil"
)

// testServer bundles everything handler tests need.
type testServer struct {
	*httptest.Server
	DB *sql.DB
}

// newTestServer builds a full API server backed by a temporary database.
// Login protection is disabled so tests can issue rapid requests.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)
	accessSvc := access.NewService(db, nil, 0)

	h := NewHandler(db, sm, accessSvc, nil)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Mount("/api", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, DB: db}
}

// newClient returns an HTTP client with its own cookie jar, representing one
// browser session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// doJSON issues a request with an optional JSON body and returns the response.
func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// decodeData decodes the data field of a response envelope into dst.
func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding response envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decoding response data: %v", err)
	}
}

// decodeError decodes an error response body.
func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var envelope ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return envelope.Error
}

// registerUser registers a user through the API and returns it. The client's
// session is logged in afterwards.
func registerUser(t *testing.T, ts *testServer, client *http.Client, username, role string) model.User {
	t.Helper()

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/register", RegisterRequest{
		Username: username,
		Password: "password123",
		Email:    username + "@example.com",
		FullName: username,
		Role:     role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registering %s: status %d", username, resp.StatusCode)
	}

	var user model.User
	decodeData(t, resp, &user)
	return user
}

// connectAccount creates a social account through the API for the client's
// current user.
func connectAccount(t *testing.T, ts *testServer, client *http.Client, platform string, managerID *int64) model.SocialAccount {
	t.Helper()

	resp := doJSON(t, client, http.MethodPost, ts.URL+"/api/accounts", CreateAccountRequest{
		Platform:    platform,
		AccountName: "handle",
		AccountID:   "ext-123",
		ManagerID:   managerID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("connecting account: status %d", resp.StatusCode)
	}

	var account model.SocialAccount
	decodeData(t, resp, &account)
	return account
}
