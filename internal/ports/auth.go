package ports

// Package ports defines interfaces (hexagonal ports) for the session core.
// Implementations live in internal/adapters; orchestration in internal/service
// and internal/gateway.

import (
	"context"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
)

// TokenStore persists the access/refresh token pair in a durable key-value
// medium. Clear removes both tokens as one logical operation: a reader going
// through the same store never observes one token present and the other
// absent mid-clear.
type TokenStore interface {
	Access(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, token string) error
	SetRefresh(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// KeyValue is the raw durable medium behind token and preference storage.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// LoginResult is what the remote boundary returns for a successful login.
type LoginResult struct {
	User   domainauth.User
	Tokens domainauth.TokenPair
}

// AuthAPI is the remote authentication boundary: credential login, identity
// lookup, profile patch, and token refresh. Adapters map wire formats and
// status codes into the domain error taxonomy.
type AuthAPI interface {
	Login(ctx context.Context, creds domainauth.Credentials) (LoginResult, error)

	// Me returns the identity the boundary associates with the access token.
	Me(ctx context.Context, accessToken string) (domainauth.User, error)

	// UpdateProfile sends a partial profile update and returns the boundary's
	// view of the updated user.
	UpdateProfile(ctx context.Context, accessToken string, patch domainauth.ProfilePatch) (domainauth.User, error)

	// RefreshToken exchanges a refresh token for a new access token.
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Navigator receives the "require re-authentication" signal when the session
// is irrecoverably lost. The presentation layer decides what a redirect means.
type Navigator interface {
	RequireLogin(ctx context.Context)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context)

// RequireLogin implements the Navigator interface.
func (f NavigatorFunc) RequireLogin(ctx context.Context) {
	if f == nil {
		return
	}
	f(ctx)
}

// SessionClearer is the slice of the auth client the gateway needs when a
// refresh fails: drop tokens and reset session state.
type SessionClearer interface {
	Logout(ctx context.Context) error
}
