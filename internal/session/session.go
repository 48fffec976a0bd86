// Package session handles the bearer token the client presents to the game
// server. The token is issued and signed elsewhere; the client only
// inspects its claims to fail fast on expiry before dialing.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrNoToken: no session token configured.
	ErrNoToken = errors.New("no session token configured")
	// ErrTokenExpired: the token's exp claim has passed.
	ErrTokenExpired = errors.New("session token expired")
)

// Session is the decoded, client-side view of a bearer token.
type Session struct {
	Token    string
	ClientID uuid.UUID
	// ExpiresAt is zero when the token carries no exp claim.
	ExpiresAt time.Time
}

// Parse decodes the token without verifying the signature; only the server
// holds the signing key. The subject claim is the client id.
func Parse(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	s := &Session{Token: token}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		id, err := uuid.Parse(sub)
		if err != nil {
			return nil, fmt.Errorf("session subject is not a client id: %w", err)
		}
		s.ClientID = id
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, nil
}

// Valid reports whether the token is still usable at the given instant.
func (s *Session) Valid(now time.Time) error {
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return fmt.Errorf("%w: at %s", ErrTokenExpired, s.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
