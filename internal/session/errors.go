package session

import "errors"

// Sentinel errors for store operations. Callers check them with errors.Is;
// the API layer maps ErrNotFound to 404 and ErrVersionConflict to 409.
var (
	// ErrNotFound indicates the requested session does not exist or has
	// expired.
	ErrNotFound = errors.New("session not found")

	// ErrVersionConflict indicates the state was modified by another writer
	// since it was read. Re-read and retry.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrInvalidBackend indicates an unrecognized backend name.
	ErrInvalidBackend = errors.New("invalid session backend")

	// ErrInvalidConfig indicates the backend is missing a required
	// dependency, such as the Redis backend without a client.
	ErrInvalidConfig = errors.New("invalid store configuration")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("session store closed")
)
