package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is the absolute session expiry, counted from login. Sessions are
// refreshed on each login, not per request.
const Lifetime = 7 * 24 * time.Hour

// KeyUserID is the session key holding the authenticated user ID.
const KeyUserID = "user_id"

// New creates a new session manager backed by the SQLite sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Server-side session storage keyed by an opaque cookie token
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}
