package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/modernstarter/sessionkit/internal/adapters/memory"
	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	mocks "github.com/modernstarter/sessionkit/internal/mocks/auth"
	"github.com/modernstarter/sessionkit/internal/ports"
)

func newClient(api ports.AuthAPI) (*AuthClient, *memory.TokenStore) {
	tokens := memory.NewTokenStore()
	client := NewAuthClient(AuthClientOptions{API: api, Tokens: tokens})
	return client, tokens
}

func TestAuthClient_Login_Success(t *testing.T) {
	ctx := context.Background()
	client, tokens := newClient(mocks.NewStubAuthAPI())

	user, err := client.Login(ctx, "admin@example.com", "password")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domainauth.RoleAdmin, user.Role)

	session := client.Sessions().Current()
	assert.True(t, session.IsAuthenticated)
	assert.False(t, session.IsLoading)
	assert.Empty(t, session.LastError)
	require.NotNil(t, session.User)
	assert.Equal(t, "admin@example.com", session.User.Email)

	access, _ := tokens.Access(ctx)
	refresh, _ := tokens.Refresh(ctx)
	assert.Equal(t, "stub-access", access)
	assert.Equal(t, "stub-refresh", refresh)
}

func TestAuthClient_Login_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	client, tokens := newClient(mocks.NewStubAuthAPI())

	user, err := client.Login(ctx, "admin@example.com", "wrong")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrInvalidCredentials))
	assert.Nil(t, user)

	session := client.Sessions().Current()
	assert.False(t, session.IsAuthenticated)
	assert.False(t, session.IsLoading)
	assert.Equal(t, "Invalid credentials", session.LastError)

	access, _ := tokens.Access(ctx)
	assert.Empty(t, access)
}

func TestAuthClient_Login_InvalidCredentialsKeepsExistingUser(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(mocks.NewStubAuthAPI())

	_, err := client.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)

	_, err = client.Login(ctx, "admin@example.com", "wrong")
	require.Error(t, err)

	session := client.Sessions().Current()
	assert.True(t, session.IsAuthenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, "admin@example.com", session.User.Email)
	assert.Equal(t, "Invalid credentials", session.LastError)
}

func TestAuthClient_Login_ResetsLoadingOnEveryExitPath(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewStubAuthAPI()
	api.LoginFunc = func(context.Context, domainauth.Credentials) (ports.LoginResult, error) {
		return ports.LoginResult{}, domainauth.ErrNetwork
	}
	client, _ := newClient(api)

	var sawLoading bool
	client.Sessions().Subscribe(func(s domainauth.Session) {
		if s.IsLoading {
			sawLoading = true
		}
	})

	_, err := client.Login(ctx, "a@b.com", "pw")

	require.Error(t, err)
	assert.True(t, sawLoading)
	assert.False(t, client.Sessions().Current().IsLoading)
}

func TestAuthClient_LoginThenLogout_ReturnsToInitialState(t *testing.T) {
	ctx := context.Background()
	client, tokens := newClient(mocks.NewStubAuthAPI())

	_, err := client.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, client.Logout(ctx))

	assert.Equal(t, domainauth.Session{}, client.Sessions().Current())
	access, _ := tokens.Access(ctx)
	refresh, _ := tokens.Refresh(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestAuthClient_Logout_IdempotentWithoutSession(t *testing.T) {
	client, _ := newClient(mocks.NewStubAuthAPI())

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, domainauth.Session{}, client.Sessions().Current())
}

func TestAuthClient_CheckAuth_NoTokenSkipsNetwork(t *testing.T) {
	api := mocks.NewStubAuthAPI()
	client, _ := newClient(api)

	ok := client.CheckAuth(context.Background())

	assert.False(t, ok)
	assert.Equal(t, domainauth.Session{}, client.Sessions().Current())
	assert.Zero(t, api.MeCalls.Load())
}

func TestAuthClient_CheckAuth_PopulatesSession(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewStubAuthAPI()
	client, tokens := newClient(api)
	require.NoError(t, tokens.SetAccess(ctx, "stored-access"))

	ok := client.CheckAuth(ctx)

	assert.True(t, ok)
	session := client.Sessions().Current()
	assert.True(t, session.IsAuthenticated)
	assert.False(t, session.IsLoading)
	assert.Equal(t, int32(1), api.MeCalls.Load())
}

func TestAuthClient_CheckAuth_FailureBehavesLikeLogout(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewStubAuthAPI()
	api.MeFunc = func(context.Context, string) (domainauth.User, error) {
		return domainauth.User{}, domainauth.ErrUnauthenticated
	}
	client, tokens := newClient(api)
	require.NoError(t, tokens.SetAccess(ctx, "stale-access"))
	require.NoError(t, tokens.SetRefresh(ctx, "stale-refresh"))

	ok := client.CheckAuth(ctx)

	assert.False(t, ok)
	assert.Equal(t, domainauth.Session{}, client.Sessions().Current())
	access, _ := tokens.Access(ctx)
	refresh, _ := tokens.Refresh(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestAuthClient_UpdateProfile_NoActiveSession(t *testing.T) {
	api := mocks.NewStubAuthAPI()
	client, _ := newClient(api)

	user, err := client.UpdateProfile(context.Background(), domainauth.ProfilePatch{
		DisplayName: domainauth.StringPtr("X"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrNoActiveSession))
	assert.Nil(t, user)
	assert.Zero(t, api.UpdateCalls.Load())
}

func TestAuthClient_UpdateProfile_PatchFieldsWin(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(mocks.NewStubAuthAPI())
	_, err := client.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)

	updated, err := client.UpdateProfile(ctx, domainauth.ProfilePatch{
		DisplayName: domainauth.StringPtr("X"),
	})

	require.NoError(t, err)
	assert.Equal(t, "X", updated.DisplayName)
	assert.Equal(t, "admin@example.com", updated.Email)

	session := client.Sessions().Current()
	require.NotNil(t, session.User)
	assert.Equal(t, "X", session.User.DisplayName)
	assert.True(t, session.IsAuthenticated)
	assert.False(t, session.IsLoading)
}

func TestAuthClient_UpdateProfile_BoundaryFailureSetsError(t *testing.T) {
	ctx := context.Background()
	api := mocks.NewStubAuthAPI()
	api.UpdateProfileFunc = func(context.Context, string, domainauth.ProfilePatch) (domainauth.User, error) {
		return domainauth.User{}, domainauth.ErrServer
	}
	client, _ := newClient(api)
	_, err := client.Login(ctx, "admin@example.com", "password")
	require.NoError(t, err)

	updated, err := client.UpdateProfile(ctx, domainauth.ProfilePatch{
		DisplayName: domainauth.StringPtr("X"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrServer))
	assert.Nil(t, updated)

	session := client.Sessions().Current()
	require.NotNil(t, session.User)
	assert.Equal(t, "Admin User", session.User.DisplayName)
	assert.Equal(t, "Profile update failed", session.LastError)
	assert.False(t, session.IsLoading)
}
