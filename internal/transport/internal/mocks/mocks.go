// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jamesprial/authgate/internal/identity"
)

// Authenticator is a mock implementation of auth.Authenticator.
type Authenticator struct {
	AuthenticateFunc func(r *http.Request) (string, error)
}

// Authenticate calls the mock AuthenticateFunc.
func (m *Authenticator) Authenticate(r *http.Request) (string, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(r)
	}
	return "", nil
}

// Limiter is a mock implementation of abuse.Limiter that records keys.
type Limiter struct {
	CheckAndRecordFunc func(ctx context.Context, key string, limit int, window time.Duration) error

	mu   sync.Mutex
	keys []string
}

// CheckAndRecord records key and calls the mock CheckAndRecordFunc.
func (m *Limiter) CheckAndRecord(ctx context.Context, key string, limit int, window time.Duration) error {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	if m.CheckAndRecordFunc != nil {
		return m.CheckAndRecordFunc(ctx, key, limit, window)
	}
	return nil
}

// Keys returns the keys seen so far.
func (m *Limiter) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.keys...)
}

// LockoutTracker is a mock implementation of abuse.LockoutTracker that
// records every call.
type LockoutTracker struct {
	CheckFunc         func(key string) error
	RecordFailureFunc func(key string) bool

	mu        sync.Mutex
	Checked   []string
	Failures  []string
	Successes []string
}

// Check records key and calls the mock CheckFunc.
func (m *LockoutTracker) Check(key string) error {
	m.mu.Lock()
	m.Checked = append(m.Checked, key)
	m.mu.Unlock()
	if m.CheckFunc != nil {
		return m.CheckFunc(key)
	}
	return nil
}

// RecordFailure records key and calls the mock RecordFailureFunc.
func (m *LockoutTracker) RecordFailure(key string) bool {
	m.mu.Lock()
	m.Failures = append(m.Failures, key)
	m.mu.Unlock()
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(key)
	}
	return false
}

// RecordSuccess records key.
func (m *LockoutTracker) RecordSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, key)
}

// Calls returns copies of the recorded keys.
func (m *LockoutTracker) Calls() (checked, failures, successes []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Checked...),
		append([]string(nil), m.Failures...),
		append([]string(nil), m.Successes...)
}

// Provider is a mock implementation of identity.Provider. Unset funcs
// succeed with zero values.
type Provider struct {
	SignInFunc             func(ctx context.Context, email, password string) (*identity.Session, error)
	SignUpFunc             func(ctx context.Context, email, password string, metadata map[string]any) (*identity.User, error)
	ResetPasswordFunc      func(ctx context.Context, email, redirectTo string) error
	UpdatePasswordFunc     func(ctx context.Context, userID, password string) error
	InviteByEmailFunc      func(ctx context.Context, email string) error
	ResendConfirmationFunc func(ctx context.Context, email string) error
	SignOutFunc            func(ctx context.Context, accessToken string) error
}

// SignIn calls the mock SignInFunc.
func (m *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &identity.Session{}, nil
}

// SignUp calls the mock SignUpFunc.
func (m *Provider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*identity.User, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, metadata)
	}
	return &identity.User{Email: email}, nil
}

// ResetPassword calls the mock ResetPasswordFunc.
func (m *Provider) ResetPassword(ctx context.Context, email, redirectTo string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, redirectTo)
	}
	return nil
}

// UpdatePassword calls the mock UpdatePasswordFunc.
func (m *Provider) UpdatePassword(ctx context.Context, userID, password string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, password)
	}
	return nil
}

// InviteByEmail calls the mock InviteByEmailFunc.
func (m *Provider) InviteByEmail(ctx context.Context, email string) error {
	if m.InviteByEmailFunc != nil {
		return m.InviteByEmailFunc(ctx, email)
	}
	return nil
}

// ResendConfirmation calls the mock ResendConfirmationFunc.
func (m *Provider) ResendConfirmation(ctx context.Context, email string) error {
	if m.ResendConfirmationFunc != nil {
		return m.ResendConfirmationFunc(ctx, email)
	}
	return nil
}

// SignOut calls the mock SignOutFunc.
func (m *Provider) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}
