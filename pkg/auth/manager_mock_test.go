package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/notify"
)

// MockProvider is a mock implementation of auth.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignIn(ctx context.Context, creds auth.Credentials) (*auth.Session, error) {
	args := m.Called(ctx, creds)
	if s, ok := args.Get(0).(*auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) SignUp(ctx context.Context, creds auth.Credentials, profile auth.Profile) (*auth.Session, error) {
	args := m.Called(ctx, creds, profile)
	if s, ok := args.Get(0).(*auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) UpdateProfile(ctx context.Context, session *auth.Session, displayName string) (*auth.Session, error) {
	args := m.Called(ctx, session, displayName)
	if s, ok := args.Get(0).(*auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) SendEmailVerification(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockProvider) SendPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockProvider) SignOut(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func mockSession(now time.Time) *auth.Session {
	return &auth.Session{
		UserID:    "uid-grace",
		Email:     "grace@example.com",
		IDToken:   "token",
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestManager_SignUpProfileFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	provider := &MockProvider{}
	session := mockSession(now)

	provider.On("SignUp", mock.Anything,
		auth.Credentials{Email: "grace@example.com", Password: "Compiler1"},
		auth.Profile{FirstName: "Grace", LastName: "Hopper"},
	).Return(session, nil)
	provider.On("UpdateProfile", mock.Anything, session, "Grace Hopper").
		Return(nil, &auth.AuthError{Category: auth.CategoryNetworkFailure, Code: auth.CodeNetwork})
	provider.On("SendEmailVerification", mock.Anything, session).Return(nil)

	recorder := &notify.Recorder{}
	m := auth.NewManager(ctx, provider, memory.NewInMemoryStore(), auth.WithNotifier(recorder))

	got, err := m.SignUp(ctx, " grace@example.com ", "Compiler1", auth.Profile{FirstName: "Grace", LastName: "Hopper"})
	require.NoError(t, err)
	assert.Equal(t, "uid-grace", got.UserID)
	assert.Empty(t, got.DisplayName, "display name stays unset when the update fails")

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "uid-grace", current.UserID)

	notes := recorder.All()
	require.Len(t, notes, 1)
	assert.Equal(t, auth.MsgSignedUp, notes[0].Message)
	provider.AssertExpectations(t)
}

func TestManager_InvalidInputSkipsProvider(t *testing.T) {
	ctx := context.Background()
	provider := &MockProvider{}
	m := auth.NewManager(ctx, provider, nil)

	_, err := m.SignIn(ctx, "not-an-email", "Secret123")
	require.Error(t, err)

	_, err = m.SignUp(ctx, "grace@example.com", "short", auth.Profile{FirstName: "Grace", LastName: "Hopper"})
	var ae *auth.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, auth.CategoryWeakPassword, ae.Category)

	require.Error(t, m.SendPasswordReset(ctx, ""))

	provider.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
	provider.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything)
}

func TestManager_UnknownProviderErrorIsWrapped(t *testing.T) {
	ctx := context.Background()
	provider := &MockProvider{}
	cause := errors.New("socket closed")
	provider.On("SignIn", mock.Anything, mock.Anything).Return(nil, cause)

	m := auth.NewManager(ctx, provider, nil)
	_, err := m.SignIn(ctx, "grace@example.com", "Compiler1")

	var ae *auth.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, auth.CategoryUnknown, ae.Category)
	assert.ErrorIs(t, err, cause)
	_, ok := m.Current()
	assert.False(t, ok)
	provider.AssertExpectations(t)
}

func TestManager_SignOutKeepsLocalStateOnProviderError(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	provider := &MockProvider{}
	session := mockSession(now)
	provider.On("SignIn", mock.Anything, mock.Anything).Return(session, nil)
	provider.On("SignOut", mock.Anything, mock.AnythingOfType("*auth.Session")).Return(errors.New("revoke failed"))

	store := memory.NewInMemoryStore()
	m := auth.NewManager(ctx, provider, store)
	_, err := m.SignIn(ctx, "grace@example.com", "Compiler1")
	require.NoError(t, err)

	err = m.SignOut(ctx)
	require.Error(t, err)

	_, ok := m.Current()
	assert.False(t, ok, "session is cleared even when the provider fails")
	exists, err := store.Exists(ctx, auth.SessionKey)
	require.NoError(t, err)
	assert.False(t, exists)
	provider.AssertExpectations(t)
}
