// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ithevyanshu/socialhub/internal/auth"
	"github.com/ithevyanshu/socialhub/internal/model"
)

// DefaultSeedPassword is the password assigned to all demo users.
const DefaultSeedPassword = "password"

// seedUser describes a demo user to create.
type seedUser struct {
	username string
	email    string
	fullName string
	role     string
}

// Seed creates demo data in the database: three users (one per role), a set
// of connected accounts including two manager-supervised ones, a few posts
// and analytics snapshots. Skips entirely if any user already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	// Check if we already have users
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	if count > 0 {
		slog.Info("database already has users, skipping seed")
		return nil
	}

	passwordHash, err := auth.HashPassword(DefaultSeedPassword)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	users := make(map[string]model.User)
	for _, su := range []seedUser{
		{"professional", "professional@example.com", "Professional User", model.RoleProfessional},
		{"brand", "brand@example.com", "Brand Account", model.RoleBrand},
		{"manager", "manager@example.com", "Social Media Manager", model.RoleManager},
	} {
		u, err := queries.CreateUser(ctx, CreateUserParams{
			Username:     su.username,
			PasswordHash: passwordHash,
			Email:        su.email,
			FullName:     su.fullName,
			Role:         su.role,
		})
		if err != nil {
			return fmt.Errorf("creating seed user %s: %w", su.username, err)
		}
		users[su.username] = u
	}

	managerID := sql.NullInt64{Int64: users["manager"].ID, Valid: true}

	externalID := func(prefix string) string {
		return prefix + "_" + uuid.NewString()[:8]
	}

	type seedAccount struct {
		owner     string
		platform  string
		name      string
		followers int64
		managed   bool
	}
	accounts := make([]model.SocialAccount, 0, 6)
	for _, sa := range []seedAccount{
		{"professional", model.PlatformInstagram, "professionalgram", 1500, false},
		{"professional", model.PlatformX, "professionalx", 2200, false},
		{"brand", model.PlatformInstagram, "brandgram", 5000, false},
		{"brand", model.PlatformFacebook, "BrandPage", 7500, false},
		{"professional", model.PlatformYouTube, "ManagedChannel", 10000, true},
		{"brand", model.PlatformLinkedIn, "Brand LinkedIn", 3000, true},
	} {
		params := CreateSocialAccountParams{
			UserID:      users[sa.owner].ID,
			Platform:    sa.platform,
			AccountName: sa.name,
			AccountID:   externalID(sa.platform),
			Followers:   sa.followers,
			IsConnected: true,
		}
		if sa.managed {
			params.ManagerID = managerID
		}
		a, err := queries.CreateSocialAccount(ctx, params)
		if err != nil {
			return fmt.Errorf("creating seed account %s: %w", sa.name, err)
		}
		accounts = append(accounts, a)
	}

	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	posts := []CreatePostParams{
		{
			SocialAccountID: accounts[0].ID,
			Content:         "Check out my latest work!",
			MediaURL:        sql.NullString{String: "https://example.com/image1.jpg", Valid: true},
			PublishedAt:     sql.NullTime{Time: now, Valid: true},
			Status:          model.PostStatusPublished,
		},
		{
			SocialAccountID: accounts[2].ID,
			Content:         "New product launch coming soon!",
			MediaURL:        sql.NullString{String: "https://example.com/product.jpg", Valid: true},
			PublishedAt:     sql.NullTime{Time: now, Valid: true},
			Status:          model.PostStatusPublished,
		},
		{
			SocialAccountID: accounts[4].ID,
			Content:         "Tutorial video coming this week",
			MediaURL:        sql.NullString{String: "https://example.com/thumbnail.jpg", Valid: true},
			ScheduledFor:    sql.NullTime{Time: tomorrow, Valid: true},
			Status:          model.PostStatusScheduled,
		},
	}
	createdPosts := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		created, err := queries.CreatePost(ctx, p)
		if err != nil {
			return fmt.Errorf("creating seed post: %w", err)
		}
		createdPosts = append(createdPosts, created)
	}

	analytics := []CreateAnalyticsParams{
		{
			SocialAccountID: accounts[0].ID,
			Date:            now,
			Reach:           2500,
			Engagement:      300,
			Followers:       15,
			Posts:           1,
			Data: model.Metadata{
				"postPerformance": []map[string]any{
					{"postId": createdPosts[0].ID, "likes": 120, "comments": 30, "shares": 15},
				},
			},
		},
		{
			SocialAccountID: accounts[2].ID,
			Date:            now,
			Reach:           6000,
			Engagement:      750,
			Followers:       50,
			Posts:           1,
			Data: model.Metadata{
				"postPerformance": []map[string]any{
					{"postId": createdPosts[1].ID, "likes": 500, "comments": 75, "shares": 120},
				},
			},
		},
	}
	for _, a := range analytics {
		if _, err := queries.CreateAnalytics(ctx, a); err != nil {
			return fmt.Errorf("creating seed analytics: %w", err)
		}
	}

	slog.Info("seeded demo data",
		"users", len(users),
		"accounts", len(accounts),
		"posts", len(createdPosts),
		"password", DefaultSeedPassword,
	)
	return nil
}
