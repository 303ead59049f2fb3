package repository

import "errors"

// ErrNotFound is returned by every backend when a lookup matches no row
// or key. Callers branch on it with errors.Is rather than inspecting
// driver-specific errors.
var ErrNotFound = errors.New("repository: not found")
