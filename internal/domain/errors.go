package domain

import (
	"errors"
	"fmt"
)

// Common engine errors.
var (
	ErrUnknownOrder   = errors.New("unknown order id")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrEngineStopped  = errors.New("engine is not running")
)

// ValidationError rejects a malformed order spec synchronously at
// submission; the order is never created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order spec: %s: %s", e.Field, e.Reason)
}

// VenueError isolates a failed venue call to the affected slice.
type VenueError struct {
	Op  string
	Err error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("venue %s failed: %v", e.Op, e.Err)
}

func (e *VenueError) Unwrap() error { return e.Err }
