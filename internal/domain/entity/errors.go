package entity

import "errors"

var (
	// ErrNotFound is returned when a referenced offer, requisition, approval
	// record, or user does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed actions, missing required
	// fields, or values outside the known enumerations
	ErrInvalidArgument = errors.New("invalid argument")
)
