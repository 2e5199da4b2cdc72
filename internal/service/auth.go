package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/ports"
	"github.com/modernstarter/sessionkit/internal/state"
)

// AuthClientOptions groups dependencies for AuthClient.
type AuthClientOptions struct {
	API    ports.AuthAPI
	Tokens ports.TokenStore
	Logger *slog.Logger

	// Sessions is optional; a fresh store with the zero Session is created
	// when nil, which is the initial state the lifecycle expects.
	Sessions *state.Store[domainauth.Session]
}

// AuthClient orchestrates the client-side session lifecycle: login, logout,
// session check, and profile updates against the remote boundary, mutating the
// observable session store and the token store as side effects.
//
// Operations serialize on an internal mutex: a login in flight is never
// interleaved with a logout or another login. IsLoading is advisory for
// observers, never a lock.
type AuthClient struct {
	mu       sync.Mutex
	api      ports.AuthAPI
	tokens   ports.TokenStore
	sessions *state.Store[domainauth.Session]
	logger   *slog.Logger
}

// NewAuthClient constructs a new AuthClient.
func NewAuthClient(opts AuthClientOptions) *AuthClient {
	sessions := opts.Sessions
	if sessions == nil {
		sessions = state.New(domainauth.Session{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthClient{
		api:      opts.API,
		tokens:   opts.Tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// Sessions exposes the observable session store for subscribers.
func (c *AuthClient) Sessions() *state.Store[domainauth.Session] {
	return c.sessions
}

// Login authenticates against the remote boundary. On success it persists the
// returned token pair and publishes the authenticated user. On invalid
// credentials the current user (if any) is left untouched and LastError is
// set. IsLoading is reset on every exit path.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*domainauth.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLoading(true)
	c.setError("")
	defer c.setLoading(false)

	result, err := c.api.Login(ctx, domainauth.Credentials{Email: email, Password: password})
	if err != nil {
		c.setError(loginErrorMessage(err))
		return nil, fmt.Errorf("login: %w", err)
	}

	c.storeTokens(ctx, result.Tokens)

	user := result.User.Clone()
	c.setUser(&user)

	out := user.Clone()
	return &out, nil
}

// Logout clears both tokens as one logical operation and resets the session
// to its initial empty state. Idempotent: with no active session it is a
// no-op beyond the clear.
func (c *AuthClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logoutLocked(ctx)
}

func (c *AuthClient) logoutLocked(ctx context.Context) error {
	err := c.tokens.Clear(ctx)
	c.sessions.Set(domainauth.Session{})
	if err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// CheckAuth verifies the stored session against the remote boundary. With no
// stored access token it resets the session and returns false without any
// network call. A failed identity lookup behaves like Logout.
func (c *AuthClient) CheckAuth(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	token := c.accessToken(ctx)
	if token == "" {
		c.sessions.Set(domainauth.Session{})
		return false
	}

	c.setLoading(true)
	defer c.setLoading(false)

	user, err := c.api.Me(ctx, token)
	if err != nil {
		c.logger.DebugContext(ctx, "session check failed", "error", err)
		if logoutErr := c.logoutLocked(ctx); logoutErr != nil {
			c.logger.WarnContext(ctx, "clear tokens after failed session check", "error", logoutErr)
		}
		return false
	}

	u := user.Clone()
	c.setUser(&u)
	return true
}

// UpdateProfile sends a partial update for the current user and replaces the
// session's user with the merge of the old record and the patch (patch fields
// win). Without an active session it fails immediately with ErrNoActiveSession
// and contacts nothing.
func (c *AuthClient) UpdateProfile(ctx context.Context, patch domainauth.ProfilePatch) (*domainauth.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.sessions.Current()
	if current.User == nil {
		return nil, domainauth.ErrNoActiveSession
	}

	c.setLoading(true)
	c.setError("")
	defer c.setLoading(false)

	if _, err := c.api.UpdateProfile(ctx, c.accessToken(ctx), patch); err != nil {
		c.setError("Profile update failed")
		return nil, fmt.Errorf("update profile: %w", err)
	}

	// The session keeps the locally merged record so a lagging boundary view
	// cannot drop fields the caller just set.
	merged := patch.Apply(*current.User)
	c.setUser(&merged)

	out := merged.Clone()
	return &out, nil
}

// accessToken reads the access token, degrading storage failures to absence.
func (c *AuthClient) accessToken(ctx context.Context) string {
	token, err := c.tokens.Access(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "read access token", "error", err)
		return ""
	}
	return token
}

func (c *AuthClient) storeTokens(ctx context.Context, pair domainauth.TokenPair) {
	if pair.AccessToken != "" {
		if err := c.tokens.SetAccess(ctx, pair.AccessToken); err != nil {
			c.logger.WarnContext(ctx, "store access token", "error", err)
		}
	}
	if pair.RefreshToken != "" {
		if err := c.tokens.SetRefresh(ctx, pair.RefreshToken); err != nil {
			c.logger.WarnContext(ctx, "store refresh token", "error", err)
		}
	}
}

func (c *AuthClient) setLoading(loading bool) {
	c.sessions.Update(func(s domainauth.Session) domainauth.Session {
		s.IsLoading = loading
		return s
	})
}

func (c *AuthClient) setError(message string) {
	c.sessions.Update(func(s domainauth.Session) domainauth.Session {
		s.LastError = message
		return s
	})
}

// setUser publishes a user and keeps IsAuthenticated == (User != nil).
func (c *AuthClient) setUser(user *domainauth.User) {
	c.sessions.Update(func(s domainauth.Session) domainauth.Session {
		s.User = user
		s.IsAuthenticated = user != nil
		s.LastError = ""
		return s
	})
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, domainauth.ErrTimeout):
		return "Request timeout. Please check your connection."
	case errors.Is(err, domainauth.ErrNetwork):
		return "Network error. Please check your connection."
	default:
		return "Login failed"
	}
}
