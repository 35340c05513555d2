package auth

import "context"

// Credentials are what a user types into the sign-in form
type Credentials struct {
	Email    string
	Password string
}

// Provider is the identity backend. Implementations translate their own
// failures into *AuthError so callers only see the closed category set.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	SignUp(ctx context.Context, creds Credentials, profile Profile) (*Session, error)
	UpdateProfile(ctx context.Context, session *Session, displayName string) (*Session, error)
	SendEmailVerification(ctx context.Context, session *Session) error
	SendPasswordReset(ctx context.Context, email string) error
	SignOut(ctx context.Context, session *Session) error
}
