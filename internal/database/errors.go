package database

import "errors"

// ErrNotFound is returned by repository lookups when no record exists for
// the given key. Callers distinguish it from genuine store failures with
// errors.Is.
var ErrNotFound = errors.New("record not found")
