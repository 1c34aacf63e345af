// Package store holds what the memory and SQL stores share.
package store

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional update finds the record
	// no longer in the state the caller expected.
	ErrConflict = errors.New("conflicting state")
)
