// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access computes role-scoped visibility for the current identity.
// Every data read/write goes through a scope or predicate from this package
// before touching the store. The computation is stateless per request; the
// only state is the persisted ownership/management graph.
package access

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ithevyanshu/socialhub/internal/cache"
	"github.com/ithevyanshu/socialhub/internal/model"
	"github.com/ithevyanshu/socialhub/internal/store"
)

// ErrForbidden signals an authenticated caller acting outside their scope.
var ErrForbidden = errors.New("forbidden")

// Service resolves visibility scopes against the store, caching computed
// scope ID sets for a short interval.
type Service struct {
	queries  *store.Queries
	cache    cache.Cache
	scopeTTL time.Duration
}

// NewService creates an access service. The cache may be nil to disable
// scope caching entirely (used in tests that assert store-level behavior).
func NewService(db *sql.DB, c cache.Cache, scopeTTL time.Duration) *Service {
	return &Service{
		queries:  store.New(db),
		cache:    c,
		scopeTTL: scopeTTL,
	}
}

// AccountScope returns the accounts visible to the user. Managers see the
// accounts they supervise plus their own; everyone else sees only accounts
// they own.
func (s *Service) AccountScope(ctx context.Context, user model.User) ([]model.SocialAccount, error) {
	if user.IsManager() {
		return s.queries.ListAccountsByManagerOrOwner(ctx, user.ID)
	}
	return s.queries.ListAccountsByOwner(ctx, user.ID)
}

func scopeCacheKey(userID int64) string {
	return fmt.Sprintf("scope:%d", userID)
}

// ScopeIDs returns the IDs of the accounts in the user's scope. The result
// is cached briefly; account mutations must call InvalidateScope for every
// affected user.
func (s *Service) ScopeIDs(ctx context.Context, user model.User) ([]int64, error) {
	key := scopeCacheKey(user.ID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var ids []int64
			if err := json.Unmarshal(raw, &ids); err == nil {
				return ids, nil
			}
			// Corrupt entry: fall through to recompute
			_ = s.cache.Delete(ctx, key)
		}
	}

	accounts, err := s.AccountScope(ctx, user)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(ids); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.scopeTTL); err != nil {
				slog.Warn("failed to cache account scope", "user_id", user.ID, "error", err)
			}
		}
	}
	return ids, nil
}

// InvalidateScope drops the cached scope of every given user. Zero IDs are
// ignored so callers can pass optional manager IDs unconditionally.
func (s *Service) InvalidateScope(ctx context.Context, userIDs ...int64) {
	if s.cache == nil {
		return
	}
	for _, id := range userIDs {
		if id == 0 {
			continue
		}
		if err := s.cache.Delete(ctx, scopeCacheKey(id)); err != nil {
			slog.Warn("failed to invalidate account scope", "user_id", id, "error", err)
		}
	}
}

// CanViewAccount reports whether the user may read a single account: they
// own it or are its assigned manager. A manager with no assignment to the
// account is rejected, consistent with the scoped list query.
func CanViewAccount(user model.User, account model.SocialAccount) bool {
	if account.UserID == user.ID {
		return true
	}
	return account.ManagerID != nil && *account.ManagerID == user.ID
}

// CanPostTo reports whether the user may create or modify content on the
// account. Same rule as CanViewAccount: ownership or assigned management.
func CanPostTo(user model.User, account model.SocialAccount) bool {
	return CanViewAccount(user, account)
}

// ManagedUsers returns the distinct users owning accounts supervised by the
// given manager. Returns ErrForbidden for non-managers regardless of what
// they own.
func (s *Service) ManagedUsers(ctx context.Context, user model.User) ([]model.User, error) {
	if !user.IsManager() {
		return nil, ErrForbidden
	}
	return s.queries.ListManagedUsers(ctx, user.ID)
}
