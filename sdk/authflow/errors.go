package authflow

import (
	"errors"
	"fmt"
)

// ErrUserCancelled indicates the interactive authorization surface was
// dismissed before the flow reached a terminal navigation. Forcibly closing
// the surface (for example after an external timeout) reports the same error.
var ErrUserCancelled = errors.New("authflow: authorization cancelled before completion")

// ValidationError indicates malformed flow input: an unparseable endpoint,
// a response_type outside the supported grammar, an unsupported PKCE
// challenge method, or an irreconcilable parameter combination.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "authflow: invalid flow parameters"
	}
	return fmt.Sprintf("authflow: invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps a network-level failure while posting to a pushed
// authorization or token endpoint. The underlying error is preserved
// unmodified; no retry is attempted here.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "authflow: transport failure"
	}
	return fmt.Sprintf("authflow: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusError reports a non-2xx response from a pushed authorization or
// token endpoint. Body holds the flattened JSON error document the server
// returned, when one was parseable.
type HTTPStatusError struct {
	StatusCode int
	Body       map[string]string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "authflow: request rejected"
	}
	if desc := e.Body["error"]; desc != "" {
		return fmt.Sprintf("authflow: request rejected with status %d: %s", e.StatusCode, desc)
	}
	return fmt.Sprintf("authflow: request rejected with status %d", e.StatusCode)
}
