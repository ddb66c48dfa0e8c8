package models

import "errors"

var (
	// ErrNotFound is returned when the upstream reports a missing resource.
	ErrNotFound = errors.New("resource not found")
	// ErrConfiguration is returned when required connection settings are absent.
	ErrConfiguration = errors.New("API configuration missing")
	// ErrValidation wraps rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is returned for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

type ErrorUnauthorized struct{ Message string }

func (e ErrorUnauthorized) Error() string { return e.Message }
func (e ErrorUnauthorized) Unwrap() error { return ErrUnauthorized }
