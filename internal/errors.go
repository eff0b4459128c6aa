package internal

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned by Browser.Find when nothing matches the locator.
	ErrNotFound = errors.New("element not found")
	// ErrNotInteractable means the element exists but cannot receive input yet
	// (hidden, zero-sized, disabled, detached).
	ErrNotInteractable = errors.New("element not interactable")
	// ErrClickIntercepted means another element covers the click target.
	ErrClickIntercepted = errors.New("click intercepted")
	// ErrSessionLost means the browser window was closed underneath us.
	ErrSessionLost = errors.New("browser session lost")
	// ErrInteractionTimeout matches every *InteractionTimeoutError via errors.Is.
	ErrInteractionTimeout = errors.New("interaction timeout")

	errUnknownLogFormat = errors.New("expected console or json")
)

// InteractionTimeoutError reports a UI element that never became ready within
// its budget. Err holds the last failure observed while polling, if any.
type InteractionTimeoutError struct {
	What    string
	Timeout time.Duration
	Err     error
}

func (e *InteractionTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timed out after %s waiting for %s: %v", e.Timeout, e.What, e.Err)
	}
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.What)
}

func (e *InteractionTimeoutError) Unwrap() error {
	return e.Err
}

func (e *InteractionTimeoutError) Is(target error) bool {
	return target == ErrInteractionTimeout
}

// ConfigError is a malformed user-supplied value, detected before any browser
// interaction starts.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsTransient returns true for element conditions that the retry primitives
// absorb silently.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNotInteractable) ||
		errors.Is(err, ErrClickIntercepted)
}
