package domain

import "errors"

var (
	// ErrRecordNotFound is returned when a write targets a record that does not exist.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNoAttributesToUpdate is returned when an update carries nothing to set.
	ErrNoAttributesToUpdate = errors.New("no attributes to update")
)
