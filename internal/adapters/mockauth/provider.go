package mockauth

// Package mockauth provides a config-driven AuthAPI for local development and
// tests. It short-circuits the remote boundary: a single configured identity
// authenticates with fixed credentials, and token material is real signed
// JWTs so expiry inspection behaves like production.

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/ports"
)

var _ ports.AuthAPI = (*Provider)(nil)

// Config controls the mock boundary behavior.
type Config struct {
	Email    string
	Password string
	User     domainauth.User

	// SigningKey signs issued tokens. Required.
	SigningKey []byte

	// AccessTTL/RefreshTTL default to 15m and 24h when zero.
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Provider implements ports.AuthAPI against in-process state.
type Provider struct {
	mu         sync.Mutex
	email      string
	password   string
	user       domainauth.User
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewProvider constructs a mock boundary from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("mock auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("mock auth: Password is required")
	}
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("mock auth: SigningKey is required")
	}

	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 24 * time.Hour
	}

	user := cfg.User
	if user.Email == "" {
		user.Email = cfg.Email
	}

	return &Provider{
		email:      cfg.Email,
		password:   cfg.Password,
		user:       user.Clone(),
		signingKey: cfg.SigningKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Login checks the configured credentials and issues a fresh token pair.
func (p *Provider) Login(_ context.Context, creds domainauth.Credentials) (ports.LoginResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !equalConstantTime(creds.Email, p.email) || !equalConstantTime(creds.Password, p.password) {
		return ports.LoginResult{}, domainauth.ErrInvalidCredentials
	}

	access, err := p.issue("access", p.accessTTL)
	if err != nil {
		return ports.LoginResult{}, err
	}
	refresh, err := p.issue("refresh", p.refreshTTL)
	if err != nil {
		return ports.LoginResult{}, err
	}

	return ports.LoginResult{
		User:   p.user.Clone(),
		Tokens: domainauth.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// Me validates the access token and returns the configured identity.
func (p *Provider) Me(_ context.Context, accessToken string) (domainauth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.validate(accessToken, "access"); err != nil {
		return domainauth.User{}, err
	}
	return p.user.Clone(), nil
}

// UpdateProfile applies the patch to the stored identity and returns the result.
func (p *Provider) UpdateProfile(_ context.Context, accessToken string, patch domainauth.ProfilePatch) (domainauth.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.validate(accessToken, "access"); err != nil {
		return domainauth.User{}, err
	}

	p.user = patch.Apply(p.user)
	return p.user.Clone(), nil
}

// RefreshToken validates the refresh token and issues a new access token.
func (p *Provider) RefreshToken(_ context.Context, refreshToken string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.validate(refreshToken, "refresh"); err != nil {
		return "", err
	}
	return p.issue("access", p.accessTTL)
}

func (p *Provider) issue(use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": p.user.ID,
		"use": use,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", use, err)
	}
	return signed, nil
}

func (p *Provider) validate(raw, wantUse string) error {
	if raw == "" {
		return domainauth.ErrUnauthenticated
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %v", domainauth.ErrUnauthenticated, err)
	}

	if use, _ := claims["use"].(string); use != wantUse {
		return fmt.Errorf("%w: token not valid for %s", domainauth.ErrUnauthenticated, wantUse)
	}
	return nil
}

func equalConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
