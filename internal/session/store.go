// Package session adapts the hosted authentication service ("session store")
// behind a narrow interface: password sign-in, sign-up with metadata, sign-out,
// session refresh, and current-user lookup. The store owns credentials and
// session tokens; this package never verifies or mints tokens itself.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned when the store rejects an email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("session store unavailable")
)

// Metadata is the immutable profile data attached to an account at sign-up.
type Metadata struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// StoreUser is the store's view of an account.
type StoreUser struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"user_metadata"`
}

// Session is an authenticated session as issued by the store. The access
// token is treated as opaque apart from its expiry claim.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *StoreUser
}

// Store is the four-call contract this application consumes.
//
// All methods honor context cancellation. Implementations must map a
// rejected credential to ErrInvalidCredentials and transport-level failures
// to an error matching ErrUnavailable, so callers can distinguish "wrong
// password" from "store down".
type Store interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, meta Metadata) (*StoreUser, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*StoreUser, error)
}
