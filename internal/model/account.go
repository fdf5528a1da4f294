// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported social platforms.
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformYouTube   = "youtube"
	PlatformX         = "x"
	PlatformLinkedIn  = "linkedin"
)

// SocialAccount represents a connected social media account. It is owned by
// exactly one user and may additionally be supervised by a manager user.
type SocialAccount struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	ManagerID   *int64 `json:"managerId"`
	Platform    string `json:"platform"`
	AccountName string `json:"accountName"`
	AccountID   string `json:"accountId"` // External platform identifier
	Followers   int64  `json:"followers"`
	IsConnected bool   `json:"isConnected"`
}

// ValidPlatform reports whether platform is one of the supported platforms.
func ValidPlatform(platform string) bool {
	switch platform {
	case PlatformInstagram, PlatformFacebook, PlatformYouTube, PlatformX, PlatformLinkedIn:
		return true
	}
	return false
}
