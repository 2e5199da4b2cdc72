package auth

import "errors"

// Error taxonomy surfaced by the auth client and request gateway. Exactly one
// of these is reported per failed call; adapters wrap them so callers can use
// errors.Is across the component boundary.
var (
	// ErrInvalidCredentials is returned when the boundary rejects a login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoActiveSession is returned by operations that require a logged-in user.
	ErrNoActiveSession = errors.New("no active session")
	// ErrUnauthenticated is returned when a refresh failed or no refresh token exists.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrServer classifies 5xx-class responses from the boundary.
	ErrServer = errors.New("server error")
	// ErrTimeout classifies request deadline expiry.
	ErrTimeout = errors.New("request timeout")
	// ErrNetwork classifies transport-level failures (DNS, refused connections).
	ErrNetwork = errors.New("network error")
)
