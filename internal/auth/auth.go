// Package auth provides the credential/session services: a remote
// implementation backed by the account registry with signed session
// tokens, and an offline implementation backed by the local store.
package auth

import (
	"context"
	"errors"

	"github.com/bganesh/bprogress/internal/models"
)

// ErrNoSession is returned by CurrentSession when no session exists.
var ErrNoSession = errors.New("no active session")

// AuthError is a credential failure (bad credentials, duplicate
// sign-up). Its message is surfaced to the user verbatim, unlike
// remote-availability failures which are swallowed.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Profile is the metadata supplied at sign-up.
type Profile struct {
	Name string
	Role models.Role
	Bio  string
}

// Event is an auth-state change. User is nil on sign-out.
type Event struct {
	User *models.User
}

// Service is the session sub-interface of the store layer.
type Service interface {
	// SignUp registers a new account and establishes a session.
	SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error)
	// SignIn establishes a session for existing credentials.
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	// SignOut clears the session.
	SignOut(ctx context.Context) error
	// CurrentSession returns the session user, or ErrNoSession.
	CurrentSession(ctx context.Context) (*models.User, error)
	// Events returns the auth-state change stream, or nil if the
	// implementation does not push changes.
	Events() <-chan Event
}
