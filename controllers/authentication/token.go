package authentication

import (
	"context"
	"edu-platform-backend/models/users"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"time"
)

// DefaultTokenTTL applies when the caller passes no lifetime.
const DefaultTokenTTL = 15 * time.Minute

var (
	ErrInvalidCredentials   = errors.New("could not validate credentials")
	ErrInvalidExternalToken = errors.New("invalid external token")
)

// TokenManager issues and verifies HS256 access tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	users  users.Store
	now    func() time.Time
}

func NewTokenManager(secret []byte, store users.Store) *TokenManager {
	return &TokenManager{secret: secret, users: store, now: time.Now}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// Issue signs a token for subject that expires after ttl.
func (m *TokenManager) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := m.now()
	// exp is encoded in whole seconds; round up so the reported expiry is
	// exactly the one the token carries.
	expiresAt := now.Add(ttl)
	if truncated := expiresAt.Truncate(time.Second); !truncated.Equal(expiresAt) {
		expiresAt = truncated.Add(time.Second)
	}
	exp := jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: exp,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp.Time, nil
}

// Subject checks signature, algorithm and expiry and returns the subject.
// A token is expired from its exp instant onwards.
func (m *TokenManager) Subject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// Verify resolves a token to a live user. Tokens whose subject was removed or
// deactivated fail the same way as forged or expired ones.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*users.User, error) {
	subject, err := m.Subject(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := m.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
