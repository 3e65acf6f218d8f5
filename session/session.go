// Package session keeps the signed-in user of a browser between requests and
// answers the role gate. The gate is a capability check for routing only;
// the backend still authorizes every call made with the session's token.
package session

import (
	"context"
	"errors"
	"time"

	"restaurant-dashboard/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrExpired        = errors.New("session expired")
	ErrInvalidSession = errors.New("session has no usable user")
)

type Session struct {
	ID        string      `json:"id" gorm:"primaryKey;size:36"`
	Token     string      `json:"token" gorm:"not null"`
	User      models.User `json:"user" gorm:"serializer:json"`
	ExpiresAt time.Time   `json:"expires_at" gorm:"index"`
	CreatedAt time.Time   `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// Start opens a session for a freshly authenticated user. The role comes from
// the user record, or from the token claims when the record lacks one.
func (m *Manager) Start(ctx context.Context, token string, user models.User) (*Session, error) {
	claims, claimsErr := ReadClaims(token)

	role, ok := models.ParseRole(string(user.Role))
	if !ok && claimsErr == nil {
		role, ok = models.ParseRole(claims.Role)
	}
	if !ok {
		return nil, ErrInvalidSession
	}
	user.Role = role
	// a successful login implies an active account
	user.Active = true

	now := m.now()
	expires := now.Add(m.ttl)
	if claimsErr == nil && claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expires) {
		expires = claims.ExpiresAt.Time
	}

	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		ExpiresAt: expires,
		CreatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Resolve loads a live session. Unknown, expired and malformed sessions all
// come back as errors so callers deny by default.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, ErrExpired
	}
	if s.Token == "" || s.User.ID == 0 {
		return nil, ErrInvalidSession
	}
	return s, nil
}

// UpdateUser stores a new copy of the user after a profile edit
func (m *Manager) UpdateUser(ctx context.Context, s *Session, user models.User) error {
	if user.Role == "" {
		user.Role = s.User.Role
	}
	if user.ClientID == nil {
		user.ClientID = s.User.ClientID
	}
	user.Active = s.User.Active
	s.User = user
	return m.store.Save(ctx, s)
}

func (m *Manager) End(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// CurrentUser returns the session's user, or nil when there is no session
func CurrentUser(s *Session) *models.User {
	if s == nil {
		return nil
	}
	return &s.User
}

// IsAllowed is true iff the user exists, is active and holds one of the roles
func IsAllowed(user *models.User, roles ...models.UserRole) bool {
	if user == nil || !user.Active {
		return false
	}
	for _, r := range roles {
		if user.Role == r {
			return true
		}
	}
	return false
}
