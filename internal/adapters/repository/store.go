// Package repository holds the activity directory and its roster operations.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/model"
)

// Store provides read/write access to the activity directory.
type Store interface {
	// List returns a deep copy of every activity keyed by name.
	List(ctx context.Context) model.Directory

	// Get returns a copy of one activity.
	// Returns ErrNotFound if the activity is unknown.
	Get(ctx context.Context, activity string) (model.Activity, error)

	// Enroll appends email to the activity roster and returns the new roster size.
	// Returns ErrNotFound or ErrAlreadySignedUp; on error nothing changes.
	Enroll(ctx context.Context, activity, email string) (int, error)

	// Withdraw removes email from the activity roster and returns the new roster size.
	// Returns ErrNotFound or ErrNotSignedUp; on error nothing changes.
	Withdraw(ctx context.Context, activity, email string) (int, error)

	// Count returns the number of activities in the directory.
	Count(ctx context.Context) int
}
