// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler publishes posts whose scheduled time has arrived.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// Scheduler handles scheduled tasks like publishing due posts.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduler with a job to check for due posts every minute.
func (s *Scheduler) Start() error {
	// Run every minute
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.ProcessDuePosts(context.Background()); err != nil {
			s.logger.Error("failed to process scheduled posts", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// ProcessDuePosts publishes every scheduled post whose time has passed.
func (s *Scheduler) ProcessDuePosts(ctx context.Context) error {
	queries := store.New(s.db)

	now := time.Now()
	posts, err := queries.ListDueScheduledPosts(ctx, now)
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled posts", "count", len(posts))

	for _, post := range posts {
		if err := s.publishPost(ctx, queries, post, now); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Published concurrently, nothing to do
				continue
			}
			s.logger.Error("failed to publish scheduled post",
				"post_id", post.ID,
				"account_id", post.SocialAccountID,
				"error", err,
			)
			continue
		}

		s.logger.Info("published scheduled post",
			"post_id", post.ID,
			"account_id", post.SocialAccountID,
			"scheduled_for", post.ScheduledFor,
		)
	}

	return nil
}

// publishPost publishes a single scheduled post and logs the event.
func (s *Scheduler) publishPost(ctx context.Context, queries *store.Queries, post model.Post, now time.Time) error {
	if err := queries.PublishScheduledPost(ctx, post.ID, now); err != nil {
		return err
	}

	metadata := map[string]any{
		"post_id":      post.ID,
		"account_id":   post.SocialAccountID,
		"published_at": now.Format(time.RFC3339),
	}
	if post.ScheduledFor != nil {
		metadata["scheduled_for"] = post.ScheduledFor.Format(time.RFC3339)
	}
	metadataJSON, _ := json.Marshal(metadata)

	_, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryPost,
		Message:   "Post published automatically by scheduler",
		UserID:    sql.NullInt64{}, // System action, no user
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled publish event", "error", err)
	}

	return nil
}
