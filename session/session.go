// Package session turns a login into a token and a token back into the
// acting user. Tokens are HS256 JWTs carrying a session id, the session id is
// looked up in a Registry on every request so a logout revokes the token
// before it expires.
package session

import (
	"context"
	"time"

	"github.com/Luismorlan/blogmux/model"
	Logger "github.com/Luismorlan/blogmux/utils/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserLookup loads the user a session points at. store.Store satisfies it.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type Manager struct {
	secret   []byte
	ttl      time.Duration
	registry Registry
	users    UserLookup
	now      func() time.Time
}

func NewManager(secret string, ttl time.Duration, registry Registry, users UserLookup) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		registry: registry,
		users:    users,
		now:      time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Establish starts a new session for user and returns its token.
func (m *Manager) Establish(ctx context.Context, user *model.User) (string, error) {
	sid := uuid.New().String()
	if err := m.registry.Put(ctx, sid, user.Id, m.ttl); err != nil {
		return "", errors.Wrap(err, "fail to register session")
	}

	now := m.now()
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Id,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "fail to sign session token")
	}
	return token, nil
}

func (m *Manager) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Clear revokes the session behind token. Unknown or malformed tokens are
// ignored, logging out twice is fine.
func (m *Manager) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.registry.Delete(ctx, claims.SessionID)
}

// CurrentActor resolves token to a user. A missing, malformed, expired or
// revoked token, or a session whose user is gone, is the anonymous actor:
// nil user and nil error. Only registry or store failures are errors.
func (m *Manager) CurrentActor(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := m.parse(token)
	if err != nil {
		Logger.Log.Debug("ignoring session token: ", err)
		return nil, nil
	}

	userID, err := m.registry.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to read session")
	}
	if userID != claims.Subject {
		return nil, nil
	}

	user, err := m.users.GetUser(ctx, userID)
	if model.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "fail to load session user")
	}
	return user, nil
}
