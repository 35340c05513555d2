package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in user as reported by the identity provider
type Session struct {
	UserID        string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	IDToken       string    `json:"idToken"`
	RefreshToken  string    `json:"refreshToken,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the session's token has lapsed at now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Profile is the extra information collected at sign-up
type Profile struct {
	FirstName string
	LastName  string
}

// DisplayName joins the first and last name
func (p Profile) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// tokenClaims are the ID token claims the adapter reads
type tokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// readClaims decodes an ID token without verifying its signature. The token
// came straight from the provider over TLS; verification belongs to any
// backend that accepts it.
func readClaims(idToken string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
