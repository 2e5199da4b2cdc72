package auth

// Package auth contains simple hand-written test doubles for the session
// core's ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"sync"
	"sync/atomic"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/observability/notify"
	"github.com/modernstarter/sessionkit/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI   = (*StubAuthAPI)(nil)
	_ ports.Navigator = (*RecordingNavigator)(nil)
	_ notify.Sink     = (*RecordingSink)(nil)
)

// DefaultUser mirrors the identity the mock boundary serves by default.
func DefaultUser() domainauth.User {
	return domainauth.User{
		ID:          "1",
		Email:       "admin@example.com",
		DisplayName: "Admin User",
		Role:        domainauth.RoleAdmin,
		Permissions: []string{"read", "write", "delete"},
	}
}

// StubAuthAPI simulates the remote authentication boundary with per-method
// hooks and call counters.
type StubAuthAPI struct {
	LoginFunc         func(ctx context.Context, creds domainauth.Credentials) (ports.LoginResult, error)
	MeFunc            func(ctx context.Context, accessToken string) (domainauth.User, error)
	UpdateProfileFunc func(ctx context.Context, accessToken string, patch domainauth.ProfilePatch) (domainauth.User, error)
	RefreshFunc       func(ctx context.Context, refreshToken string) (string, error)

	LoginCalls   atomic.Int32
	MeCalls      atomic.Int32
	UpdateCalls  atomic.Int32
	RefreshCalls atomic.Int32
}

// NewStubAuthAPI creates a stub with sensible defaults: admin@example.com /
// password authenticates as DefaultUser with a deterministic token pair.
func NewStubAuthAPI() *StubAuthAPI {
	return &StubAuthAPI{}
}

func (s *StubAuthAPI) Login(ctx context.Context, creds domainauth.Credentials) (ports.LoginResult, error) {
	s.LoginCalls.Add(1)
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, creds)
	}
	if creds.Email == "admin@example.com" && creds.Password == "password" {
		return ports.LoginResult{
			User:   DefaultUser(),
			Tokens: domainauth.TokenPair{AccessToken: "stub-access", RefreshToken: "stub-refresh"},
		}, nil
	}
	return ports.LoginResult{}, domainauth.ErrInvalidCredentials
}

func (s *StubAuthAPI) Me(ctx context.Context, accessToken string) (domainauth.User, error) {
	s.MeCalls.Add(1)
	if s.MeFunc != nil {
		return s.MeFunc(ctx, accessToken)
	}
	if accessToken == "" {
		return domainauth.User{}, domainauth.ErrUnauthenticated
	}
	return DefaultUser(), nil
}

func (s *StubAuthAPI) UpdateProfile(ctx context.Context, accessToken string, patch domainauth.ProfilePatch) (domainauth.User, error) {
	s.UpdateCalls.Add(1)
	if s.UpdateProfileFunc != nil {
		return s.UpdateProfileFunc(ctx, accessToken, patch)
	}
	return patch.Apply(DefaultUser()), nil
}

func (s *StubAuthAPI) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	s.RefreshCalls.Add(1)
	if s.RefreshFunc != nil {
		return s.RefreshFunc(ctx, refreshToken)
	}
	if refreshToken == "" {
		return "", domainauth.ErrUnauthenticated
	}
	return "stub-access-refreshed", nil
}

// RecordingNavigator counts re-authentication signals.
type RecordingNavigator struct {
	Calls atomic.Int32
}

func (n *RecordingNavigator) RequireLogin(context.Context) {
	n.Calls.Add(1)
}

// RecordingSink collects emitted error events.
type RecordingSink struct {
	mu     sync.Mutex
	events []notify.ErrorEvent
}

func (r *RecordingSink) SendError(_ context.Context, event notify.ErrorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *RecordingSink) Events() []notify.ErrorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.ErrorEvent(nil), r.events...)
}

// Kinds returns just the recorded event kinds, in order.
func (r *RecordingSink) Kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]notify.Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
