package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modernstarter/sessionkit/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client delivers classified request-error events to a Slack webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	retryLimit int
	client     *http.Client
}

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		webhookURL: webhookURL,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   fallbackString(strings.TrimSpace(cfg.Username), "sessionkit"),
		retryLimit: retries,
		client:     hc,
	}, nil
}

// SendError posts a formatted message to Slack.
func (c *Client) SendError(ctx context.Context, event notify.ErrorEvent) error {
	msg := c.formatMessage(event)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			// Simple linear backoff to avoid thundering retries.
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) formatMessage(event notify.ErrorEvent) map[string]any {
	timestamp := event.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	text := strings.Builder{}
	text.WriteString("*Request failure*")
	if event.Kind != "" {
		text.WriteString(" (")
		text.WriteString(string(event.Kind))
		text.WriteByte(')')
	}
	text.WriteByte('\n')

	fields := []struct {
		label string
		value string
	}{
		{"Message", fallbackString(event.Message, event.Kind.Message())},
		{"Request", requestLine(event)},
		{"Status", statusValue(event.Status)},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		text.WriteString("• *")
		text.WriteString(field.label)
		text.WriteString("*: ")
		text.WriteString(field.value)
		text.WriteByte('\n')
	}
	text.WriteString("_at ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))
	text.WriteByte('_')

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func requestLine(event notify.ErrorEvent) string {
	if event.Method == "" && event.Path == "" {
		return ""
	}
	return strings.TrimSpace(event.Method + " " + event.Path)
}

func statusValue(status int) string {
	if status == 0 {
		return ""
	}
	return fmt.Sprintf("%d", status)
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
