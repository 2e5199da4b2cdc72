package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_Login_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds domainauth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "admin@example.com", creds.Email)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":          "1",
				"email":       creds.Email,
				"name":        "Admin User",
				"role":        "admin",
				"permissions": []string{"read", "write", "delete"},
			},
			"token":        "access-1",
			"refreshToken": "refresh-1",
		})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := client.Login(context.Background(), domainauth.Credentials{
		Email:    "admin@example.com",
		Password: "password",
	})

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, result.User.Role)
	assert.Equal(t, "Admin User", result.User.DisplayName)
	assert.Equal(t, "access-1", result.Tokens.AccessToken)
	assert.Equal(t, "refresh-1", result.Tokens.RefreshToken)
}

func TestClient_Login_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), domainauth.Credentials{Email: "a@b.com", Password: "nope"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrInvalidCredentials))
}

func TestClient_Me_AttachesBearerAndMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer valid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1", "email": "a@b.com", "name": "A", "role": "user"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	user, err := client.Me(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = client.Me(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrUnauthenticated))
}

func TestClient_UpdateProfile_SendsPatchFieldsOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/auth/profile", r.URL.Path)

		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, map[string]any{"name": "X"}, got)

		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1", "email": "a@b.com", "name": "X", "role": "user"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	user, err := client.UpdateProfile(context.Background(), "valid", domainauth.ProfilePatch{
		DisplayName: domainauth.StringPtr("X"),
	})

	require.NoError(t, err)
	assert.Equal(t, "X", user.DisplayName)
}

func TestClient_RefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["refreshToken"] != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	token, err := client.RefreshToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	_, err = client.RefreshToken(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrUnauthenticated))
}

func TestClient_ServerErrorsClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "valid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrServer))
}

func TestClient_TimeoutClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "valid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrTimeout))
}

func TestClient_NetworkErrorClassifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "valid")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrNetwork))
}
