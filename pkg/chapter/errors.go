package chapter

import (
	"errors"
)

// ErrNoImages is returned when a chapter source holds no supported images.
// It is informational: no transcript is written and batch runs move on.
var ErrNoImages = errors.New("no images found in chapter")

// FatalError marks failures that must abort the whole run, such as a missing
// input path or rar input without the unrar capability.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err (or anything it wraps) is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
