package healjai

import "errors"

// Core errors; handlers map them onto HTTP status codes and localized
// user-facing strings with errors.Is.
var (
	// ErrInvalidInput marks empty or malformed input; nothing is mutated.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProfaneName marks a display name refused outright by the guard.
	// Names are rejected, chat content is cleaned instead.
	ErrProfaneName = errors.New("name contains profanity")
	// ErrNotFound marks an unknown participant or room ID.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a participant who is not a member of the room.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRoomClosed marks an append to an ended room. It is a non-fatal
	// "chat ended" condition, not a failure.
	ErrRoomClosed = errors.New("room closed")
)
