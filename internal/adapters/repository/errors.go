package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for directory errors.
var (
	// ErrNotFound carries the exact detail the API returns on 404.
	ErrNotFound = errors.New("Activity not found") //nolint:staticcheck // user-facing detail text

	// ErrInvalidState groups roster errors that leave the request unsatisfiable.
	ErrInvalidState = errors.New("invalid roster state")

	ErrAlreadySignedUp = fmt.Errorf("%w: student is already signed up", ErrInvalidState)
	ErrNotSignedUp     = fmt.Errorf("%w: student is not signed up for this activity", ErrInvalidState)
)
