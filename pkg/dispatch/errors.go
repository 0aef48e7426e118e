package dispatch

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/marker"
)

// ErrNoHandler is returned when resolution exhausts a value's candidate keys
// without finding a handler in the dispatcher or any parent. It indicates a
// type graph referencing behavior the active dispatcher does not define,
// and is never recoverable by retrying.
var ErrNoHandler = errors.New("no handler registered")

// ErrDepthExceeded is returned when a graph dispatch recurses past the
// configured depth budget, which happens on cyclic type graphs or hostile
// deeply nested data.
var ErrDepthExceeded = errors.New("dispatch depth exceeded")

// MissError reports a dispatch miss for a specific key chain.
type MissError struct {
	Dispatcher string
	Key        marker.Key
	Keys       []marker.Key
}

func (e *MissError) Error() string {
	if e.Dispatcher == "" {
		return fmt.Sprintf("no handler for %q (tried %v)", e.Key, e.Keys)
	}
	return fmt.Sprintf("%s: no handler for %q (tried %v)", e.Dispatcher, e.Key, e.Keys)
}

func (e *MissError) Unwrap() error { return ErrNoHandler }

// DepthError reports where a depth overflow happened.
type DepthError struct {
	Dispatcher string
	Limit      int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%s: recursion exceeded %d levels", e.Dispatcher, e.Limit)
}

func (e *DepthError) Unwrap() error { return ErrDepthExceeded }
