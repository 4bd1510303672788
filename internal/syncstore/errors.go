package syncstore

import (
	"errors"
	"fmt"
)

// ErrNotCached is returned when a mutator targets an id the cache has never
// seen; no request is issued.
var ErrNotCached = errors.New("record not in cache")

// ValidationError means a required field was missing; it is raised before any
// cache mutation or network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for field '%s': %s", e.Field, e.Reason)
}

// SyncError means a remote round-trip failed after the optimistic mutation was
// applied. By the time the caller sees it the cache has already been rolled
// back to its pre-operation state.
type SyncError struct {
	Op     string
	Entity string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Op, e.Entity, e.Err.Error())
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
