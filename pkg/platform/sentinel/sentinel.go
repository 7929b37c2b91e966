// Package sentinel defines the errors stores report about resource state.
// Services match on these with errors.Is and translate them into domain
// errors; validation failures never use them.
package sentinel

import "errors"

var (
	// ErrNotFound: the entity does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness or concurrent-write conflict.
	ErrConflict = errors.New("conflict")
	// ErrCapacity: a guarded commit would push the caregiver past the
	// assignment limit.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrInvalidState: the entity is in the wrong state for the operation,
	// e.g. deactivating an already inactive assignment.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable: the backing service did not answer.
	ErrUnavailable = errors.New("unavailable")
)
