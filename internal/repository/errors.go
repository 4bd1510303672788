package repository

import "errors"

// ErrNotFound covers both a missing id and an id owned by somebody else:
// callers must not be able to tell the two apart.
var ErrNotFound = errors.New("record not found")
