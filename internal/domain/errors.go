package domain

import "errors"

var (
	// ErrInvalidRequest marks malformed client input; the only error surfaced to callers as a rejection.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSyllabusNotFound indicates the syllabus store has no entry for the id.
	ErrSyllabusNotFound = errors.New("syllabus not found")
	// ErrMalformedContent indicates generator output could not be parsed into the expected shape.
	ErrMalformedContent = errors.New("malformed generated content")
	// ErrAlreadyInRoom is returned when a connection tries to join a second room.
	ErrAlreadyInRoom = errors.New("connection already joined another room")
	// ErrNotInRoom is returned when a connection acts before joining.
	ErrNotInRoom = errors.New("connection has not joined a room")
)
