// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
	"github.com/ithevyanshu/socialhub/internal/testutil"
)

func TestCreateAndGetUser(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	created, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username:     "alice",
		PasswordHash: "digest.salt",
		Email:        "alice@example.com",
		FullName:     "Alice Doe",
		Role:         model.RoleBrand,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byName, err := queries.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	byEmail, err := queries.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = queries.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateUser_DuplicateUsernameAndEmail(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	_, err := queries.CreateUser(ctx, store.CreateUserParams{
		Username: "alice", PasswordHash: "h", Email: "alice@example.com",
		FullName: "Alice", Role: model.RoleBrand,
	})
	require.NoError(t, err)

	_, err = queries.CreateUser(ctx, store.CreateUserParams{
		Username: "alice", PasswordHash: "h", Email: "other@example.com",
		FullName: "Alice2", Role: model.RoleBrand,
	})
	assert.Error(t, err, "duplicate username must be rejected")

	_, err = queries.CreateUser(ctx, store.CreateUserParams{
		Username: "alice2", PasswordHash: "h", Email: "alice@example.com",
		FullName: "Alice2", Role: model.RoleBrand,
	})
	assert.Error(t, err, "duplicate email must be rejected")
}

func TestUpdateUserProfile_RoleUntouched(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, queries, "alice", model.RoleProfessional)

	updated, err := queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Email:    "new@example.com",
		FullName: "New Name",
		ID:       u.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, model.RoleProfessional, updated.Role)
	assert.Equal(t, "alice", updated.Username)

	_, err = queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Email: "x@example.com", FullName: "X", ID: 9999,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAccountScopeQueries(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleProfessional)
	manager := testutil.CreateUser(t, queries, "mgr", model.RoleManager)
	other := testutil.CreateUser(t, queries, "other", model.RoleBrand)

	owned := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformInstagram)
	managed := testutil.CreateAccount(t, queries, owner.ID, manager.ID, model.PlatformYouTube)
	managersOwn := testutil.CreateAccount(t, queries, manager.ID, 0, model.PlatformX)
	testutil.CreateAccount(t, queries, other.ID, 0, model.PlatformFacebook)

	byOwner, err := queries.ListAccountsByOwner(ctx, owner.ID)
	require.NoError(t, err)
	ids := accountIDs(byOwner)
	assert.ElementsMatch(t, []int64{owned.ID, managed.ID}, ids)

	scope, err := queries.ListAccountsByManagerOrOwner(ctx, manager.ID)
	require.NoError(t, err)
	ids = accountIDs(scope)
	assert.ElementsMatch(t, []int64{managed.ID, managersOwn.ID}, ids,
		"manager scope is supervised accounts plus own accounts")
}

func accountIDs(accounts []model.SocialAccount) []int64 {
	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestUpdateSocialAccount_Partial(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleBrand)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformInstagram)

	followers := int64(4200)
	updated, err := queries.UpdateSocialAccount(ctx, store.UpdateSocialAccountParams{
		Followers: &followers,
		ID:        account.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4200), updated.Followers)
	assert.Equal(t, account.AccountName, updated.AccountName, "untouched field must keep its value")
	assert.True(t, updated.IsConnected)

	disconnected := false
	updated, err = queries.UpdateSocialAccount(ctx, store.UpdateSocialAccountParams{
		IsConnected: &disconnected,
		ID:          account.ID,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsConnected)
	assert.Equal(t, int64(4200), updated.Followers)

	_, err = queries.UpdateSocialAccount(ctx, store.UpdateSocialAccountParams{ID: 9999})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListPostsByAccountIDs_OrderAndFilter(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleBrand)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformInstagram)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var earlier, later model.Post
	var err error
	earlier, err = queries.CreatePost(ctx, store.CreatePostParams{
		SocialAccountID: account.ID,
		Content:         "earlier",
		ScheduledFor:    sql.NullTime{Time: base, Valid: true},
		Status:          model.PostStatusScheduled,
	})
	require.NoError(t, err)
	later, err = queries.CreatePost(ctx, store.CreatePostParams{
		SocialAccountID: account.ID,
		Content:         "later",
		ScheduledFor:    sql.NullTime{Time: base.Add(time.Hour), Valid: true},
		Status:          model.PostStatusScheduled,
	})
	require.NoError(t, err)
	draft, err := queries.CreatePost(ctx, store.CreatePostParams{
		SocialAccountID: account.ID,
		Content:         "draft",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusDraft, draft.Status)

	posts, err := queries.ListPostsByAccountIDs(ctx, []int64{account.ID}, "")
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, later.ID, posts[0].ID, "most recently scheduled first")
	assert.Equal(t, earlier.ID, posts[1].ID)

	scheduled, err := queries.ListPostsByAccountIDs(ctx, []int64{account.ID}, model.PostStatusScheduled)
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	none, err := queries.ListPostsByAccountIDs(ctx, nil, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPublishScheduledPost(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleBrand)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformX)

	past := time.Now().Add(-time.Hour)
	post, err := queries.CreatePost(ctx, store.CreatePostParams{
		SocialAccountID: account.ID,
		Content:         "due",
		ScheduledFor:    sql.NullTime{Time: past, Valid: true},
		Status:          model.PostStatusScheduled,
	})
	require.NoError(t, err)

	due, err := queries.ListDueScheduledPosts(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, post.ID, due[0].ID)

	now := time.Now()
	require.NoError(t, queries.PublishScheduledPost(ctx, post.ID, now))

	published, err := queries.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	// Second publish attempt is a no-op guarded by status
	err = queries.PublishScheduledPost(ctx, post.ID, now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAnalytics_OrderAndMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, queries, "owner", model.RoleBrand)
	account := testutil.CreateAccount(t, queries, owner.ID, 0, model.PlatformInstagram)

	day1 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	_, err := queries.CreateAnalytics(ctx, store.CreateAnalyticsParams{
		SocialAccountID: account.ID,
		Date:            day1,
		Reach:           100,
	})
	require.NoError(t, err)

	newest, err := queries.CreateAnalytics(ctx, store.CreateAnalyticsParams{
		SocialAccountID: account.ID,
		Date:            day2,
		Reach:           200,
		Data: model.Metadata{
			"postPerformance": []map[string]any{
				{"postId": 1, "likes": 10, "comments": 2, "shares": 1},
			},
		},
	})
	require.NoError(t, err)

	entries, err := queries.ListAnalyticsByAccountIDs(ctx, []int64{account.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newest.ID, entries[0].ID, "most recent date first")

	perf, ok := entries[0].Data["postPerformance"]
	require.True(t, ok, "metadata payload survives the round trip")
	assert.NotEmpty(t, perf)
}

func TestListManagedUsers_Distinct(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	manager := testutil.CreateUser(t, queries, "mgr", model.RoleManager)
	owner1 := testutil.CreateUser(t, queries, "owner1", model.RoleProfessional)
	owner2 := testutil.CreateUser(t, queries, "owner2", model.RoleBrand)
	testutil.CreateUser(t, queries, "unrelated", model.RoleBrand)

	// owner1 has two managed accounts; must appear once
	testutil.CreateAccount(t, queries, owner1.ID, manager.ID, model.PlatformInstagram)
	testutil.CreateAccount(t, queries, owner1.ID, manager.ID, model.PlatformX)
	testutil.CreateAccount(t, queries, owner2.ID, manager.ID, model.PlatformLinkedIn)

	users, err := queries.ListManagedUsers(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, owner1.ID, users[0].ID)
	assert.Equal(t, owner2.ID, users[1].ID)
}

func TestSeed(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, db))

	queries := store.New(db)
	manager, err := queries.GetUserByUsername(ctx, "manager")
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, manager.Role)

	scope, err := queries.ListAccountsByManagerOrOwner(ctx, manager.ID)
	require.NoError(t, err)
	assert.Len(t, scope, 2, "manager supervises two seeded accounts")

	// Seeding twice is a no-op
	require.NoError(t, store.Seed(ctx, db))
	var count int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, int64(3), count)
}

func TestEvents(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	_, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelInfo, Category: model.EventCategoryAuth,
		Message: "old", CreatedAt: old,
	})
	require.NoError(t, err)
	_, err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level: model.EventLevelWarning, Category: model.EventCategoryAuth,
		Message: "recent", CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, queries.DeleteOldEvents(ctx, time.Now().Add(-24*time.Hour)))

	var count int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count))
	assert.Equal(t, int64(1), count)

	if !errors.Is(queries.DeleteOldEvents(ctx, time.Time{}), nil) {
		t.Error("deleting with zero cutoff must not fail")
	}
}
