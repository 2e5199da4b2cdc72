package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// JSON convenience wrappers over Do. Paths are resolved against BaseURL; a
// non-nil out receives the decoded response body. Non-2xx statuses that Do
// does not classify (plain 4xx) surface as a StatusError.

// StatusError reports a non-2xx response the gateway does not classify.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// Get issues a GET request and decodes the response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.doJSON(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with a JSON body and decodes the response into out.
func (g *Gateway) Patch(ctx context.Context, path string, body, out any) error {
	return g.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request and decodes the response into out.
func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (g *Gateway) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.resolve(path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Do(ctx, req)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Method: method, Path: path}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func (g *Gateway) resolve(path string) string {
	if g.baseURL == "" {
		return path
	}
	return g.baseURL + "/" + strings.TrimLeft(path, "/")
}
