package dao

import "errors"

// Common, reusable DAO errors. Callers detect them via errors.Is.

var (
	// ErrNotFound is returned when the requested entity does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied ID/key is empty or otherwise
	// invalid.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrConflict is returned when the stored revision differs from the one
	// the caller loaded; the caller should re-load and re-apply.
	ErrConflict = errors.New("dao: revision conflict")

	// ErrDuplicate is returned when creating an entity whose key is taken.
	ErrDuplicate = errors.New("dao: duplicate")
)
