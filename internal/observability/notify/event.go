package notify

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/modernstarter/sessionkit/internal/domain/auth"
)

// Kind classifies a request failure for downstream presentation.
type Kind string

const (
	KindServerError     Kind = "server_error"
	KindTimeout         Kind = "timeout"
	KindNetworkError    Kind = "network_error"
	KindUnauthenticated Kind = "unauthenticated"
)

// Message returns the user-facing text for the kind.
func (k Kind) Message() string {
	switch k {
	case KindServerError:
		return "Server error. Please try again later."
	case KindTimeout:
		return "Request timeout. Please check your connection."
	case KindNetworkError:
		return "Network error. Please check your connection."
	case KindUnauthenticated:
		return "Your session has expired. Please sign in again."
	default:
		return "Something went wrong."
	}
}

// KindOf maps a classified error to its event kind. Unclassified errors map
// to the empty Kind; callers should skip emission for those.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domainauth.ErrServer):
		return KindServerError
	case errors.Is(err, domainauth.ErrTimeout):
		return KindTimeout
	case errors.Is(err, domainauth.ErrNetwork):
		return KindNetworkError
	case errors.Is(err, domainauth.ErrUnauthenticated):
		return KindUnauthenticated
	default:
		return ""
	}
}

// ErrorEvent captures the canonical data we emit for a classified request failure.
type ErrorEvent struct {
	Kind       Kind
	Message    string
	Method     string
	Path       string
	Status     int
	OccurredAt time.Time
}

// Sink describes a destination capable of consuming classified error events.
type Sink interface {
	SendError(ctx context.Context, event ErrorEvent) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event ErrorEvent) error

// SendError implements the Sink interface.
func (f SinkFunc) SendError(ctx context.Context, event ErrorEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Multi fans an event out to several sinks; the first error wins but every
// sink is attempted.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, event ErrorEvent) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.SendError(ctx, event); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
