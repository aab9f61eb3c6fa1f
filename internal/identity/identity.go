// Package identity talks to the external identity provider that owns user
// accounts, passwords and token issuance.
package identity

import (
	"context"
	"errors"
	"time"

	ierrors "github.com/jamesprial/authgate/internal/errors"
)

const domainIdentity = "identity"

// Sentinel errors. Provider errors match exactly one with errors.Is.
var (
	// ErrInvalidCredentials indicates the email/password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed indicates the account exists but is unconfirmed.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrAlreadyRegistered indicates the email already has an account.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrRejected indicates the provider refused the request for another reason.
	ErrRejected = errors.New("rejected by identity provider")

	// ErrUnavailable indicates the provider could not be reached or failed.
	ErrUnavailable = errors.New("identity provider unavailable")

	// ErrNotConfigured indicates the operation needs a credential that is not set.
	ErrNotConfigured = errors.New("identity provider operation not configured")
)

// User is the provider's view of an account.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
}

// Confirmed reports whether the user has confirmed their email.
func (u *User) Confirmed() bool {
	return u != nil && u.EmailConfirmedAt != nil && !u.EmailConfirmedAt.IsZero()
}

// Session is the result of a successful sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Provider is the set of identity provider operations authgate delegates to.
type Provider interface {
	// SignIn exchanges email and password for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp creates an account; metadata is stored on the user.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error)

	// ResetPassword sends a recovery email linking to redirectTo.
	ResetPassword(ctx context.Context, email, redirectTo string) error

	// UpdatePassword sets a new password for userID.
	UpdatePassword(ctx context.Context, userID, password string) error

	// InviteByEmail sends an account invitation.
	InviteByEmail(ctx context.Context, email string) error

	// ResendConfirmation re-sends the signup confirmation email.
	ResendConfirmation(ctx context.Context, email string) error

	// SignOut revokes the session behind accessToken.
	SignOut(ctx context.Context, accessToken string) error
}

func newError(op string, kind, sentinel error, status int, msg string) *ierrors.DomainError {
	e := ierrors.New(domainIdentity, op, kind, sentinel)
	if status != 0 {
		e = e.WithContext("status", status)
	}
	if msg != "" {
		e = e.WithContext("provider_message", msg)
	}
	return e
}
