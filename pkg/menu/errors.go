package menu

import "errors"

var (
	// ErrCancelled is returned when the user picks 0 or input ends.
	ErrCancelled = errors.New("selection cancelled")
	// ErrNoLibrary is returned when the library directory does not exist.
	ErrNoLibrary = errors.New("library folder not found")
	// ErrEmptyLibrary is returned when the library has no comic folders.
	ErrEmptyLibrary = errors.New("no comic folders in library")
)
