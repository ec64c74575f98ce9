package repository

import "errors"

var (
	// ErrNotFound is returned when a record is absent or not visible to the caller's tenant
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the caller may not modify the record
	ErrForbidden = errors.New("record belongs to another tenant")
	// ErrInvalidFilter is returned when a list filter value cannot be parsed
	ErrInvalidFilter = errors.New("invalid filter")
)
