package arr

import (
	"errors"
	"fmt"
)

// Error classification is the load-bearing contract of these clients.
// A misclassified not-found marks a request removed and throws away user
// intent; a misclassified transient leaves it permanently stale.
var (
	// ErrNotFound means the external service no longer has the entity.
	ErrNotFound = errors.New("not found on external service")

	// ErrTransient covers timeouts, connection failures, 429s and 5xx
	// responses. Callers retry on the next pass and must not mutate status.
	ErrTransient = errors.New("transient external service error")

	// ErrAuth means bad credentials or missing required config. Surfaced
	// as an operator health signal, never as a per-request status change.
	ErrAuth = errors.New("external service authentication failed")
)

// Error wraps a classified failure with the operation that produced it.
type Error struct {
	Op   string // e.g. "radarr.GetMovie"
	Kind error  // one of the sentinel errors above
	Err  error  // underlying cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// IsNotFound reports whether the error indicates the external entity is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether the error should be retried next pass.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsAuth reports whether the error indicates bad credentials.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
