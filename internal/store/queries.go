// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ithevyanshu/socialhub/internal/model"
)

// DBTX is the subset of *sql.DB / *sql.Tx used by Queries.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to the domain tables.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const userColumns = "id, username, password_hash, email, full_name, role"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role)
	return u, err
}

// GetUserByID fetches a user by primary key.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername fetches a user by unique username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// GetUserByEmail fetches a user by unique email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// CreateUserParams holds the fields required to create a user.
type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	Role         string
}

// CreateUser inserts a new user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, email, full_name, role) VALUES (?, ?, ?, ?, ?)",
		arg.Username, arg.PasswordHash, arg.Email, arg.FullName, arg.Role)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// UpdateUserProfileParams holds the mutable profile fields. Username, role
// and password are deliberately absent: role is immutable after
// registration and the others have dedicated flows.
type UpdateUserProfileParams struct {
	Email    string
	FullName string
	ID       int64
}

// UpdateUserProfile updates a user's email and full name.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (model.User, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET email = ?, full_name = ? WHERE id = ?",
		arg.Email, arg.FullName, arg.ID)
	if err != nil {
		return model.User{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.User{}, err
	} else if n == 0 {
		return model.User{}, sql.ErrNoRows
	}
	return q.GetUserByID(ctx, arg.ID)
}

// ListManagedUsers returns the distinct users owning at least one account
// supervised by the given manager.
func (q *Queries) ListManagedUsers(ctx context.Context, managerID int64) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT DISTINCT u.id, u.username, u.password_hash, u.email, u.full_name, u.role "+
			"FROM users u JOIN social_accounts a ON a.user_id = u.id "+
			"WHERE a.manager_id = ? ORDER BY u.id", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const accountColumns = "id, user_id, manager_id, platform, account_name, account_id, followers, is_connected"

func scanAccount(row interface{ Scan(...any) error }) (model.SocialAccount, error) {
	var a model.SocialAccount
	var managerID sql.NullInt64
	err := row.Scan(&a.ID, &a.UserID, &managerID, &a.Platform, &a.AccountName, &a.AccountID, &a.Followers, &a.IsConnected)
	if err != nil {
		return model.SocialAccount{}, err
	}
	if managerID.Valid {
		a.ManagerID = &managerID.Int64
	}
	return a, nil
}

func (q *Queries) listAccounts(ctx context.Context, query string, args ...any) ([]model.SocialAccount, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetSocialAccount fetches an account by primary key.
func (q *Queries) GetSocialAccount(ctx context.Context, id int64) (model.SocialAccount, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM social_accounts WHERE id = ?", id)
	return scanAccount(row)
}

// ListAccountsByOwner returns all accounts owned by the given user.
func (q *Queries) ListAccountsByOwner(ctx context.Context, userID int64) ([]model.SocialAccount, error) {
	return q.listAccounts(ctx,
		"SELECT "+accountColumns+" FROM social_accounts WHERE user_id = ? ORDER BY id", userID)
}

// ListAccountsByManagerOrOwner returns accounts the given user supervises
// plus accounts they own. This is the manager visibility scope.
func (q *Queries) ListAccountsByManagerOrOwner(ctx context.Context, userID int64) ([]model.SocialAccount, error) {
	return q.listAccounts(ctx,
		"SELECT "+accountColumns+" FROM social_accounts WHERE manager_id = ? OR user_id = ? ORDER BY id",
		userID, userID)
}

// CreateSocialAccountParams holds the fields required to connect an account.
type CreateSocialAccountParams struct {
	UserID      int64
	ManagerID   sql.NullInt64
	Platform    string
	AccountName string
	AccountID   string
	Followers   int64
	IsConnected bool
}

// CreateSocialAccount inserts a new social account and returns the stored row.
func (q *Queries) CreateSocialAccount(ctx context.Context, arg CreateSocialAccountParams) (model.SocialAccount, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO social_accounts (user_id, manager_id, platform, account_name, account_id, followers, is_connected) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		arg.UserID, arg.ManagerID, arg.Platform, arg.AccountName, arg.AccountID, arg.Followers, arg.IsConnected)
	if err != nil {
		return model.SocialAccount{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SocialAccount{}, err
	}
	return q.GetSocialAccount(ctx, id)
}

// UpdateSocialAccountParams holds the optional fields of a partial account
// update. Nil fields are left untouched. UserID is deliberately absent:
// ownership does not change after connection.
type UpdateSocialAccountParams struct {
	ManagerID   *int64
	AccountName *string
	Followers   *int64
	IsConnected *bool
	ID          int64
}

// UpdateSocialAccount applies a partial update and returns the updated row.
// Returns sql.ErrNoRows if the account does not exist.
func (q *Queries) UpdateSocialAccount(ctx context.Context, arg UpdateSocialAccountParams) (model.SocialAccount, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE social_accounts SET "+
			"manager_id = COALESCE(?, manager_id), "+
			"account_name = COALESCE(?, account_name), "+
			"followers = COALESCE(?, followers), "+
			"is_connected = COALESCE(?, is_connected) "+
			"WHERE id = ?",
		arg.ManagerID, arg.AccountName, arg.Followers, arg.IsConnected, arg.ID)
	if err != nil {
		return model.SocialAccount{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.SocialAccount{}, err
	} else if n == 0 {
		return model.SocialAccount{}, sql.ErrNoRows
	}
	return q.GetSocialAccount(ctx, arg.ID)
}

const postColumns = "id, social_account_id, content, media_url, scheduled_for, published_at, reach, engagement, clicks, status"

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	var mediaURL sql.NullString
	var scheduledFor, publishedAt sql.NullTime
	err := row.Scan(&p.ID, &p.SocialAccountID, &p.Content, &mediaURL, &scheduledFor, &publishedAt,
		&p.Reach, &p.Engagement, &p.Clicks, &p.Status)
	if err != nil {
		return model.Post{}, err
	}
	if mediaURL.Valid {
		p.MediaURL = &mediaURL.String
	}
	if scheduledFor.Valid {
		p.ScheduledFor = &scheduledFor.Time
	}
	if publishedAt.Valid {
		p.PublishedAt = &publishedAt.Time
	}
	return p, nil
}

// GetPost fetches a post by primary key.
func (q *Queries) GetPost(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	return scanPost(row)
}

// ListPostsByAccountIDs returns posts belonging to any of the given
// accounts, most recently scheduled first. An empty status matches all
// statuses. The ordering is a correctness contract for the recent/upcoming
// views, not an incidental default.
func (q *Queries) ListPostsByAccountIDs(ctx context.Context, accountIDs []int64, status string) ([]model.Post, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(accountIDs)-1) + "?"
	args := make([]any, 0, len(accountIDs)+1)
	for _, id := range accountIDs {
		args = append(args, id)
	}

	query := "SELECT " + postColumns + " FROM posts WHERE social_account_id IN (" + placeholders + ")"
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY scheduled_for DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListDueScheduledPosts returns scheduled posts whose scheduled time has
// passed, ready for publishing.
func (q *Queries) ListDueScheduledPosts(ctx context.Context, now time.Time) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?",
		model.PostStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PublishScheduledPost flips a scheduled post to published. The status
// guard keeps the update idempotent if the post was published concurrently.
func (q *Queries) PublishScheduledPost(ctx context.Context, id int64, publishedAt time.Time) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE posts SET status = ?, published_at = ? WHERE id = ? AND status = ?",
		model.PostStatusPublished, publishedAt, id, model.PostStatusScheduled)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreatePostParams holds the fields required to create a post.
type CreatePostParams struct {
	SocialAccountID int64
	Content         string
	MediaURL        sql.NullString
	ScheduledFor    sql.NullTime
	PublishedAt     sql.NullTime
	Status          string
}

// CreatePost inserts a new post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	status := arg.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO posts (social_account_id, content, media_url, scheduled_for, published_at, status) "+
			"VALUES (?, ?, ?, ?, ?, ?)",
		arg.SocialAccountID, arg.Content, arg.MediaURL, arg.ScheduledFor, arg.PublishedAt, status)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPost(ctx, id)
}

// UpdatePostParams holds the optional fields of a partial post update.
// Nil fields are left untouched.
type UpdatePostParams struct {
	Content      *string
	MediaURL     *string
	ScheduledFor *time.Time
	PublishedAt  *time.Time
	Status       *string
	Reach        *int64
	Engagement   *int64
	Clicks       *int64
	ID           int64
}

// UpdatePost applies a partial update and returns the updated row.
// Returns sql.ErrNoRows if the post does not exist.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE posts SET "+
			"content = COALESCE(?, content), "+
			"media_url = COALESCE(?, media_url), "+
			"scheduled_for = COALESCE(?, scheduled_for), "+
			"published_at = COALESCE(?, published_at), "+
			"status = COALESCE(?, status), "+
			"reach = COALESCE(?, reach), "+
			"engagement = COALESCE(?, engagement), "+
			"clicks = COALESCE(?, clicks) "+
			"WHERE id = ?",
		arg.Content, arg.MediaURL, arg.ScheduledFor, arg.PublishedAt, arg.Status,
		arg.Reach, arg.Engagement, arg.Clicks, arg.ID)
	if err != nil {
		return model.Post{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Post{}, err
	} else if n == 0 {
		return model.Post{}, sql.ErrNoRows
	}
	return q.GetPost(ctx, arg.ID)
}

const analyticsColumns = "id, social_account_id, date, followers, engagement, reach, posts, data"

func scanAnalytics(row interface{ Scan(...any) error }) (model.Analytics, error) {
	var a model.Analytics
	err := row.Scan(&a.ID, &a.SocialAccountID, &a.Date, &a.Followers, &a.Engagement, &a.Reach, &a.Posts, &a.Data)
	return a, err
}

// ListAnalyticsByAccountIDs returns analytics rows for the given accounts,
// most recent date first.
func (q *Queries) ListAnalyticsByAccountIDs(ctx context.Context, accountIDs []int64) ([]model.Analytics, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(accountIDs)-1) + "?"
	args := make([]any, 0, len(accountIDs))
	for _, id := range accountIDs {
		args = append(args, id)
	}

	rows, err := q.db.QueryContext(ctx,
		"SELECT "+analyticsColumns+" FROM analytics WHERE social_account_id IN ("+placeholders+") ORDER BY date DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Analytics
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// CreateAnalyticsParams holds the fields required to append an analytics row.
type CreateAnalyticsParams struct {
	SocialAccountID int64
	Date            time.Time
	Followers       int64
	Engagement      int64
	Reach           int64
	Posts           int64
	Data            model.Metadata
}

// CreateAnalytics appends a new analytics row. Rows are never mutated once
// created.
func (q *Queries) CreateAnalytics(ctx context.Context, arg CreateAnalyticsParams) (model.Analytics, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO analytics (social_account_id, date, followers, engagement, reach, posts, data) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		arg.SocialAccountID, arg.Date, arg.Followers, arg.Engagement, arg.Reach, arg.Posts, arg.Data)
	if err != nil {
		return model.Analytics{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Analytics{}, err
	}
	row := q.db.QueryRowContext(ctx, "SELECT "+analyticsColumns+" FROM analytics WHERE id = ?", id)
	return scanAnalytics(row)
}

// CreateEventParams holds the fields of an audit log entry.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IPAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO events (level, category, message, user_id, ip_address, metadata, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IPAddress, metadata, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListEventsParams bounds an audit log page.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns a page of audit entries, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, level, category, message, user_id, ip_address, metadata, created_at "+
			"FROM events ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.IPAddress, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of audit entries.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	return count, err
}

// DeleteOldEvents removes audit entries created before the cutoff.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("deleting old events: %w", err)
	}
	return nil
}
