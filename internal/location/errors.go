package location

import "errors"

var (
	// ErrHomeNotFound is returned when a home ID does not exist.
	ErrHomeNotFound = errors.New("home not found")

	// ErrRoomNotFound is returned when a room ID does not exist.
	ErrRoomNotFound = errors.New("room not found")
)
