package gateway

// Package gateway wraps outbound HTTP calls for the session core. It attaches
// the current access token, performs exactly one refresh-and-retry cycle on an
// authorization failure, and classifies everything else for the notification
// layer. Concurrent authorization failures share a single in-flight refresh.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	"github.com/modernstarter/sessionkit/internal/observability/notify"
	"github.com/modernstarter/sessionkit/internal/ports"
)

const refreshKey = "refresh"

// Options groups dependencies for Gateway.
type Options struct {
	// BaseURL prefixes the JSON convenience helpers. Do ignores it.
	BaseURL string

	Client *http.Client
	Tokens ports.TokenStore

	// API provides the refresh endpoint of the remote boundary.
	API ports.AuthAPI

	// Auth, when set, performs the session-clearing side effect after an
	// irrecoverable refresh failure. Nil falls back to clearing the token
	// store directly.
	Auth ports.SessionClearer

	// Navigator receives the re-authentication signal. Optional.
	Navigator ports.Navigator

	// Notifier receives classified error events. Optional.
	Notifier notify.Sink

	Logger *slog.Logger
}

// Gateway sends authenticated requests through the remote boundary.
type Gateway struct {
	baseURL   string
	client    *http.Client
	tokens    ports.TokenStore
	api       ports.AuthAPI
	auth      ports.SessionClearer
	navigator ports.Navigator
	notifier  notify.Sink
	logger    *slog.Logger

	group singleflight.Group
}

// New constructs a Gateway.
func New(opts Options) *Gateway {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		client:    client,
		tokens:    opts.Tokens,
		api:       opts.API,
		auth:      opts.Auth,
		navigator: opts.Navigator,
		notifier:  opts.Notifier,
		logger:    logger,
	}
}

// pendingRequest pairs an outbound call with its one-shot retry flag, so a
// request is retried at most once even if authorization fails again after a
// successful refresh.
type pendingRequest struct {
	req            *http.Request
	getBody        func() (io.ReadCloser, error)
	overrideToken  string
	alreadyRetried bool
}

func newPendingRequest(req *http.Request) (*pendingRequest, error) {
	p := &pendingRequest{req: req, getBody: req.GetBody}
	if req.Body != nil && req.GetBody == nil {
		buf, err := io.ReadAll(req.Body)
		if cerr := req.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		p.getBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	}
	return p, nil
}

// build clones the original request with a fresh body for each attempt.
func (p *pendingRequest) build(ctx context.Context) (*http.Request, error) {
	req := p.req.Clone(ctx)
	if p.getBody != nil {
		body, err := p.getBody()
		if err != nil {
			return nil, err
		}
		req.Body = body
	}
	return req, nil
}

// Do sends the request with the current access token attached. Absence of a
// token is not an error; the call proceeds unauthenticated and the boundary
// decides. A 401 triggers at most one refresh-and-retry cycle; server and
// transport failures are classified and surfaced unchanged.
func (g *Gateway) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	pending, err := newPendingRequest(req)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}

	resp, err := g.attempt(ctx, pending)
	if err != nil {
		return nil, g.fail(ctx, pending, 0, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !pending.alreadyRetried {
		discard(resp)

		access, refreshErr := g.refresh(ctx)
		if refreshErr != nil {
			return nil, g.fail(ctx, pending, http.StatusUnauthorized, refreshErr)
		}

		pending.alreadyRetried = true
		pending.overrideToken = access
		resp, err = g.attempt(ctx, pending)
		if err != nil {
			return nil, g.fail(ctx, pending, 0, err)
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Retry budget spent; surface the failure without another cycle.
		discard(resp)
		return nil, g.fail(ctx, pending, resp.StatusCode,
			fmt.Errorf("authorization failed after retry: %w", domainauth.ErrUnauthenticated))
	case resp.StatusCode >= http.StatusInternalServerError:
		return resp, g.fail(ctx, pending, resp.StatusCode,
			fmt.Errorf("boundary returned %d: %w", resp.StatusCode, domainauth.ErrServer))
	default:
		return resp, nil
	}
}

func (g *Gateway) attempt(ctx context.Context, pending *pendingRequest) (*http.Response, error) {
	req, err := pending.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild request: %w", err)
	}

	token := pending.overrideToken
	if token == "" {
		token = g.accessToken(ctx)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return resp, nil
}

// refresh exchanges the stored refresh token for a new access token. At most
// one refresh is in flight at a time; concurrent callers await and share its
// outcome. Session-clearing side effects run once, on the flight leader.
func (g *Gateway) refresh(ctx context.Context) (string, error) {
	v, err, _ := g.group.Do(refreshKey, func() (any, error) {
		refreshToken, err := g.tokens.Refresh(ctx)
		if err != nil {
			g.logger.DebugContext(ctx, "read refresh token", "error", err)
			refreshToken = ""
		}
		if refreshToken == "" {
			g.sessionLost(ctx)
			return nil, fmt.Errorf("no refresh token: %w", domainauth.ErrUnauthenticated)
		}

		access, err := g.api.RefreshToken(ctx, refreshToken)
		if err != nil {
			g.logger.DebugContext(ctx, "token refresh failed", "error", err)
			g.sessionLost(ctx)
			return nil, fmt.Errorf("refresh token: %w", domainauth.ErrUnauthenticated)
		}

		if err := g.tokens.SetAccess(ctx, access); err != nil {
			g.logger.WarnContext(ctx, "store refreshed access token", "error", err)
		}
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// sessionLost clears tokens and session state and signals that the caller
// must re-authenticate.
func (g *Gateway) sessionLost(ctx context.Context) {
	if g.auth != nil {
		if err := g.auth.Logout(ctx); err != nil {
			g.logger.WarnContext(ctx, "logout after refresh failure", "error", err)
		}
	} else if g.tokens != nil {
		if err := g.tokens.Clear(ctx); err != nil {
			g.logger.WarnContext(ctx, "clear tokens after refresh failure", "error", err)
		}
	}
	if g.navigator != nil {
		g.navigator.RequireLogin(ctx)
	}
}

// fail classifies err, emits the matching error event, and returns the error
// unchanged. Emission is a reporting side effect, never a control-flow branch.
func (g *Gateway) fail(ctx context.Context, pending *pendingRequest, status int, err error) error {
	kind := notify.KindOf(err)
	if kind == "" || g.notifier == nil {
		return err
	}

	event := notify.ErrorEvent{
		Kind:       kind,
		Message:    kind.Message(),
		Method:     pending.req.Method,
		Path:       pending.req.URL.Path,
		Status:     status,
		OccurredAt: time.Now(),
	}
	if sendErr := g.notifier.SendError(ctx, event); sendErr != nil {
		g.logger.WarnContext(ctx, "emit error event", "kind", string(kind), "error", sendErr)
	}
	return err
}

func (g *Gateway) accessToken(ctx context.Context) string {
	if g.tokens == nil {
		return ""
	}
	token, err := g.tokens.Access(ctx)
	if err != nil {
		g.logger.DebugContext(ctx, "read access token", "error", err)
		return ""
	}
	return token
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

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
