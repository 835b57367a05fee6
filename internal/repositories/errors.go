package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist, or that a
	// referenced record (video, channel, playlist) is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a uniqueness constraint,
	// such as a taken username or email.
	ErrConflict = errors.New("record conflict")
)
