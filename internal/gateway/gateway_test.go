package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/modernstarter/sessionkit/internal/adapters/memory"
	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
	mocks "github.com/modernstarter/sessionkit/internal/mocks/auth"
	"github.com/modernstarter/sessionkit/internal/observability/notify"
)

func TestGateway_AttachesBearerToken(t *testing.T) {
	ctx := context.Background()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetAccess(ctx, "abc"))
	g := New(Options{Tokens: tokens, API: mocks.NewStubAuthAPI()})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := g.Do(ctx, req)

	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestGateway_MissingTokenIsNotAnError(t *testing.T) {
	ctx := context.Background()
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("Authorization") != ""
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := New(Options{Tokens: memory.NewTokenStore(), API: mocks.NewStubAuthAPI()})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := g.Do(ctx, req)

	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.False(t, sawHeader)
}

func TestGateway_RefreshesOnceAndRetries(t *testing.T) {
	ctx := context.Background()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetAccess(ctx, "stale"))
	require.NoError(t, tokens.SetRefresh(ctx, "refresh-1"))

	api := mocks.NewStubAuthAPI()
	api.RefreshFunc = func(_ context.Context, refreshToken string) (string, error) {
		assert.Equal(t, "refresh-1", refreshToken)
		return "fresh", nil
	}
	g := New(Options{Tokens: tokens, API: api})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := g.Do(ctx, req)

	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), api.RefreshCalls.Load())

	access, _ := tokens.Access(ctx)
	assert.Equal(t, "fresh", access)
}

func TestGateway_ReplaysBodyOnRetry(t *testing.T) {
	ctx := context.Background()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetRefresh(ctx, "refresh-1"))
	api := mocks.NewStubAuthAPI()
	api.RefreshFunc = func(context.Context, string) (string, error) { return "fresh", nil }
	g := New(Options{Tokens: tokens, API: api})

	err := g.Post(ctx, srv.URL+"/items", map[string]string{"name": "widget"}, nil)

	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Contains(t, bodies[1], "widget")
}

func TestGateway_SecondAuthFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetRefresh(ctx, "refresh-1"))
	api := mocks.NewStubAuthAPI()
	api.RefreshFunc = func(context.Context, string) (string, error) { return "still-rejected", nil }
	g := New(Options{Tokens: tokens, API: api})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrUnauthenticated))
	assert.Equal(t, int32(2), requests.Load())
	assert.Equal(t, int32(1), api.RefreshCalls.Load())
}

func TestGateway_NoRefreshTokenClearsSessionAndSignals(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetAccess(ctx, "stale"))
	api := mocks.NewStubAuthAPI()
	navigator := &mocks.RecordingNavigator{}
	sink := &mocks.RecordingSink{}
	g := New(Options{Tokens: tokens, API: api, Navigator: navigator, Notifier: sink})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrUnauthenticated))
	assert.Zero(t, api.RefreshCalls.Load())
	assert.Equal(t, int32(1), navigator.Calls.Load())
	assert.Equal(t, []notify.Kind{notify.KindUnauthenticated}, sink.Kinds())

	access, _ := tokens.Access(ctx)
	assert.Empty(t, access)
}

func TestGateway_RefreshFailureClearsSessionAndSignals(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetAccess(ctx, "stale"))
	require.NoError(t, tokens.SetRefresh(ctx, "expired-refresh"))
	api := mocks.NewStubAuthAPI()
	api.RefreshFunc = func(context.Context, string) (string, error) {
		return "", domainauth.ErrUnauthenticated
	}
	navigator := &mocks.RecordingNavigator{}
	g := New(Options{Tokens: tokens, API: api, Navigator: navigator})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrUnauthenticated))
	assert.Equal(t, int32(1), navigator.Calls.Load())

	access, _ := tokens.Access(ctx)
	refresh, _ := tokens.Refresh(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestGateway_ServerErrorIsClassifiedNotRetried(t *testing.T) {
	ctx := context.Background()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sink := &mocks.RecordingSink{}
	g := New(Options{Tokens: memory.NewTokenStore(), API: mocks.NewStubAuthAPI(), Notifier: sink})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/widgets", nil)
	resp, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrServer))
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, int32(1), requests.Load())

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.KindServerError, events[0].Kind)
	assert.Equal(t, http.StatusServiceUnavailable, events[0].Status)
	assert.Equal(t, "/api/widgets", events[0].Path)
}

func TestGateway_NetworkErrorIsClassified(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	sink := &mocks.RecordingSink{}
	g := New(Options{Tokens: memory.NewTokenStore(), API: mocks.NewStubAuthAPI(), Notifier: sink})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrNetwork))
	assert.Equal(t, []notify.Kind{notify.KindNetworkError}, sink.Kinds())
}

func TestGateway_TimeoutIsClassified(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := New(Options{
		Client: &http.Client{Timeout: 50 * time.Millisecond},
		Tokens: memory.NewTokenStore(),
		API:    mocks.NewStubAuthAPI(),
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	_, err := g.Do(ctx, req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainauth.ErrTimeout))
}

// Concurrent authorization failures must share one in-flight refresh: exactly
// one refresh call is issued and every request retries with its result.
func TestGateway_ConcurrentAuthFailuresShareOneRefresh(t *testing.T) {
	const workers = 8

	ctx := context.Background()
	var unauthorized atomic.Int32
	allFailed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			if unauthorized.Add(1) == workers {
				close(allFailed)
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tokens := memory.NewTokenStore()
	require.NoError(t, tokens.SetAccess(ctx, "stale"))
	require.NoError(t, tokens.SetRefresh(ctx, "refresh-1"))

	api := mocks.NewStubAuthAPI()
	api.RefreshFunc = func(ctx context.Context, _ string) (string, error) {
		// Hold the refresh until every worker has observed its 401, plus a
		// margin for the last worker to join, so the whole herd is waiting
		// on this single flight.
		select {
		case <-allFailed:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		time.Sleep(100 * time.Millisecond)
		return "fresh", nil
	}
	g := New(Options{Tokens: tokens, API: api})

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			resp, err := g.Do(ctx, req)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode == http.StatusOK {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.RefreshCalls.Load(), "expected exactly one refresh call")
	assert.Equal(t, int32(workers), succeeded.Load())
}

func TestGateway_JSONHelpersDecodeResponse(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"name":"widget"}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	g := New(Options{BaseURL: srv.URL, Tokens: memory.NewTokenStore(), API: mocks.NewStubAuthAPI()})

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, g.Get(ctx, "/widgets/1", &out))
	assert.Equal(t, "widget", out.Name)

	require.NoError(t, g.Delete(ctx, "/widgets/1", nil))

	err := g.Put(ctx, "/widgets/1", map[string]string{}, nil)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
