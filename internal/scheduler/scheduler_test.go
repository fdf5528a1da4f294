// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
	"github.com/ithevyanshu/socialhub/internal/testutil"
)

func createPost(t *testing.T, queries *store.Queries, accountID int64, status string, scheduledFor time.Time) model.Post {
	t.Helper()
	arg := store.CreatePostParams{
		SocialAccountID: accountID,
		Content:         "post content",
		Status:          status,
	}
	if !scheduledFor.IsZero() {
		arg.ScheduledFor = sql.NullTime{Time: scheduledFor, Valid: true}
	}
	post, err := queries.CreatePost(context.Background(), arg)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return post
}

func TestProcessDuePosts(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleProfessional)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformInstagram)

	due := createPost(t, queries, account.ID, model.PostStatusScheduled, time.Now().Add(-time.Hour))
	future := createPost(t, queries, account.ID, model.PostStatusScheduled, time.Now().Add(time.Hour))
	draft := createPost(t, queries, account.ID, model.PostStatusDraft, time.Time{})

	s := New(db, testutil.TestLogger())
	if err := s.ProcessDuePosts(ctx); err != nil {
		t.Fatalf("ProcessDuePosts: %v", err)
	}

	got, err := queries.GetPost(ctx, due.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Status != model.PostStatusPublished {
		t.Errorf("due post status = %q, want %q", got.Status, model.PostStatusPublished)
	}
	if got.PublishedAt == nil {
		t.Error("due post should have a published_at timestamp")
	}

	got, _ = queries.GetPost(ctx, future.ID)
	if got.Status != model.PostStatusScheduled {
		t.Errorf("future post status = %q, want %q", got.Status, model.PostStatusScheduled)
	}

	got, _ = queries.GetPost(ctx, draft.ID)
	if got.Status != model.PostStatusDraft {
		t.Errorf("draft post status = %q, want %q", got.Status, model.PostStatusDraft)
	}
}

func TestProcessDuePosts_LogsEvent(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleBrand)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformX)
	createPost(t, queries, account.ID, model.PostStatusScheduled, time.Now().Add(-time.Minute))

	s := New(db, testutil.TestLogger())
	if err := s.ProcessDuePosts(ctx); err != nil {
		t.Fatalf("ProcessDuePosts: %v", err)
	}

	events, err := queries.ListEvents(ctx, store.ListEventsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 publish event, got %d", len(events))
	}
	if events[0].Category != model.EventCategoryPost {
		t.Errorf("event category = %q, want %q", events[0].Category, model.EventCategoryPost)
	}
}

func TestProcessDuePosts_Empty(t *testing.T) {
	db := testutil.TestDB(t)

	s := New(db, testutil.TestLogger())
	if err := s.ProcessDuePosts(context.Background()); err != nil {
		t.Fatalf("ProcessDuePosts on empty database: %v", err)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	db := testutil.TestDB(t)

	s := New(db, testutil.TestLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
