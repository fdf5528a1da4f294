// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
)

// Post represents a piece of content on a social account. Scheduled posts
// carry a ScheduledFor timestamp and are flipped to published by the
// scheduler once that moment passes.
type Post struct {
	ID              int64      `json:"id"`
	SocialAccountID int64      `json:"socialAccountId"`
	Content         string     `json:"content"`
	MediaURL        *string    `json:"mediaUrl"`
	ScheduledFor    *time.Time `json:"scheduledFor"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Reach           int64      `json:"reach"`
	Engagement      int64      `json:"engagement"`
	Clicks          int64      `json:"clicks"`
	Status          string     `json:"status"`
}

// ValidPostStatus reports whether status is one of the known post statuses.
func ValidPostStatus(status string) bool {
	switch status {
	case PostStatusDraft, PostStatusScheduled, PostStatusPublished:
		return true
	}
	return false
}
