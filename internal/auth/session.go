package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"threadvote/internal/models"
	"threadvote/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "threadvote_session"

	keyUserID    = "user_id"
	keySessionID = "sid"
	keyIssuedAt  = "issued_at"
)

// IdentityLookup resolves a user id stored in a session.
type IdentityLookup interface {
	Identity(ctx context.Context, id uint) (models.User, error)
}

// SessionContext is the identity resolved for one request. The zero value is anonymous.
type SessionContext struct {
	user      *models.User
	sessionID string
}

func Anonymous() SessionContext { return SessionContext{} }

func Authenticated(user models.User, sessionID string) SessionContext {
	return SessionContext{user: &user, sessionID: sessionID}
}

// Identity returns the resolved user, or nil for an anonymous request.
func (s SessionContext) Identity() *models.User { return s.user }

// RequireIdentity returns the user or services.ErrAuthRequired.
func (s SessionContext) RequireIdentity() (*models.User, error) {
	if s.user == nil {
		return nil, services.ErrAuthRequired
	}
	return s.user, nil
}

// ViewerID is the user id to annotate reads with; 0 when anonymous.
func (s SessionContext) ViewerID() uint {
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// Manager issues, resolves and clears cookie sessions.
type Manager struct {
	revoked RevocationStore
	users   IdentityLookup
	maxAge  time.Duration
	secure  bool
	now     func() time.Time
}

func NewManager(revoked RevocationStore, users IdentityLookup, maxAge time.Duration, secure bool) *Manager {
	return &Manager{
		revoked: revoked,
		users:   users,
		maxAge:  maxAge,
		secure:  secure,
		now:     time.Now,
	}
}

// Options are the cookie attributes for an active session.
func (m *Manager) Options() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(m.maxAge / time.Second),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue starts a fresh session for userID, replacing whatever the request carried.
func (m *Manager) Issue(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(keyUserID, userID)
	session.Set(keySessionID, uuid.NewString())
	session.Set(keyIssuedAt, m.now().Unix())
	session.Options(m.Options())
	if err := session.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Resolve maps the request's session to an identity. Missing, malformed, expired,
// revoked or orphaned sessions are anonymous; only infrastructure failures are errors.
func (m *Manager) Resolve(c *gin.Context) (SessionContext, error) {
	session := sessions.Default(c)

	userID, ok := session.Get(keyUserID).(uint)
	if !ok || userID == 0 {
		return Anonymous(), nil
	}
	sessionID, _ := session.Get(keySessionID).(string)
	issuedAt, _ := session.Get(keyIssuedAt).(int64)
	if sessionID == "" || m.expired(issuedAt) {
		return Anonymous(), nil
	}

	revoked, err := m.revoked.IsRevoked(c.Request.Context(), sessionID)
	if err != nil {
		return Anonymous(), fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return Anonymous(), nil
	}

	user, err := m.users.Identity(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Anonymous(), nil
		}
		return Anonymous(), err
	}
	return Authenticated(user, sessionID), nil
}

// Clear revokes the current session id for the rest of its lifetime and deletes the cookie.
func (m *Manager) Clear(c *gin.Context) error {
	session := sessions.Default(c)

	if sessionID, ok := session.Get(keySessionID).(string); ok && sessionID != "" {
		issuedAt, _ := session.Get(keyIssuedAt).(int64)
		if err := m.revoked.Revoke(c.Request.Context(), sessionID, m.remaining(issuedAt)); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}

	session.Clear()
	opts := m.Options()
	opts.MaxAge = -1
	session.Options(opts)
	if err := session.Save(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) expired(issuedAt int64) bool {
	return issuedAt <= 0 || m.now().After(time.Unix(issuedAt, 0).Add(m.maxAge))
}

func (m *Manager) remaining(issuedAt int64) time.Duration {
	if issuedAt <= 0 {
		return m.maxAge
	}
	return time.Unix(issuedAt, 0).Add(m.maxAge).Sub(m.now())
}
