// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the SocialHub project.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary test database with all migrations applied.
// The database and its file are removed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "socialhub-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}

	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// CreateUser inserts a user with a pre-hashed placeholder credential.
// Tests that need to log in through the credential store should hash their
// own password instead.
func CreateUser(t *testing.T, queries *store.Queries, username, role string) model.User {
	t.Helper()

	u, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: "x.x",
		Email:        username + "@example.com",
		FullName:     username,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("creating test user %s: %v", username, err)
	}
	return u
}

// CreateAccount inserts a social account owned by ownerID, optionally
// supervised by managerID (0 means unmanaged).
func CreateAccount(t *testing.T, queries *store.Queries, ownerID, managerID int64, platform string) model.SocialAccount {
	t.Helper()

	params := store.CreateSocialAccountParams{
		UserID:      ownerID,
		Platform:    platform,
		AccountName: "acct",
		AccountID:   "ext-1",
		IsConnected: true,
	}
	if managerID != 0 {
		params.ManagerID = sql.NullInt64{Int64: managerID, Valid: true}
	}
	a, err := queries.CreateSocialAccount(context.Background(), params)
	if err != nil {
		t.Fatalf("creating test account: %v", err)
	}
	return a
}
