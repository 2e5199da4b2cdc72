package httpapi

// Package httpapi implements the remote authentication boundary over HTTP,
// mapping wire responses into the domain error taxonomy.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/ports"
)

var _ ports.AuthAPI = (*Client)(nil)

// Config controls the HTTP boundary client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Client talks to the remote authentication boundary.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds an HTTP boundary client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: baseURL, client: hc}, nil
}

type userPayload struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (p userPayload) toDomain() domainauth.User {
	return domainauth.User{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.Name,
		AvatarURL:   p.Avatar,
		Role:        domainauth.Role(p.Role),
		Permissions: p.Permissions,
	}
}

type loginResponse struct {
	User         userPayload `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a user record and a token pair.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials) (ports.LoginResult, error) {
	var out loginResponse
	err := c.call(ctx, http.MethodPost, "/auth/login", "", creds, &out, func(status int) error {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return domainauth.ErrInvalidCredentials
		}
		return nil
	})
	if err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{
		User: out.User.toDomain(),
		Tokens: domainauth.TokenPair{
			AccessToken:  out.Token,
			RefreshToken: out.RefreshToken,
		},
	}, nil
}

// Me returns the identity associated with the access token.
func (c *Client) Me(ctx context.Context, accessToken string) (domainauth.User, error) {
	var out userPayload
	err := c.call(ctx, http.MethodGet, "/auth/me", accessToken, nil, &out, func(status int) error {
		if status == http.StatusUnauthorized {
			return domainauth.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return domainauth.User{}, err
	}
	return out.toDomain(), nil
}

// UpdateProfile sends a partial profile update and returns the boundary's
// view of the updated user.
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, patch domainauth.ProfilePatch) (domainauth.User, error) {
	var out userPayload
	err := c.call(ctx, http.MethodPatch, "/auth/profile", accessToken, patch, &out, func(status int) error {
		if status == http.StatusUnauthorized {
			return domainauth.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return domainauth.User{}, err
	}
	return out.toDomain(), nil
}

// RefreshToken exchanges the refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var out refreshResponse
	err := c.call(ctx, http.MethodPost, "/auth/refresh", "", body, &out, func(status int) error {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return domainauth.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("refresh response carried no token: %w", domainauth.ErrUnauthenticated)
	}
	return out.Token, nil
}

// call issues one request and maps the outcome: transport failures and 5xx
// classify into the shared taxonomy, statusErr handles operation-specific
// codes, and anything else non-2xx is a plain error.
func (c *Client) call(
	ctx context.Context,
	method, path, accessToken string,
	body, out any,
	statusErr func(status int) error,
) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s returned %d: %w", path, resp.StatusCode, domainauth.ErrServer)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if mapped := statusErr(resp.StatusCode); mapped != nil {
			return fmt.Errorf("%s: %w", path, mapped)
		}
		return fmt.Errorf("%s returned unexpected status %d", path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domainauth.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", domainauth.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domainauth.ErrNetwork, err)
	}
}
