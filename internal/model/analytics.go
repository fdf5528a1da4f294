// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata is a schema-less JSON document for platform-specific detail.
// The minimal documented shape is:
//
//	{"postPerformance": [{"postId": 1, "likes": 120, "comments": 30, "shares": 15}]}
//
// Keys beyond that are platform-dependent; consumers must treat every key
// as optional.
type Metadata map[string]any

// Value implements driver.Valuer, storing the metadata as JSON text.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON text columns.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata source type %T", src)
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(b, m)
}

// Analytics is an append-only per-account metrics snapshot.
type Analytics struct {
	ID              int64     `json:"id"`
	SocialAccountID int64     `json:"socialAccountId"`
	Date            time.Time `json:"date"`
	Followers       int64     `json:"followers"`
	Engagement      int64     `json:"engagement"`
	Reach           int64     `json:"reach"`
	Posts           int64     `json:"posts"`
	Data            Metadata  `json:"data"`
}
