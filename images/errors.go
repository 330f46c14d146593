package images

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for image names missing from the metadata
	ErrNotFound = errors.New("image not found")
	// ErrNoExtension is returned when a name has no extension to infer a type from
	ErrNoExtension = errors.New("image name has no extension")
	// ErrNoWidths is returned for metadata without any width to select from
	ErrNoWidths = errors.New("image has no widths")
)

// Error carries the image name a lookup failed for
type Error struct {
	Image string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Image, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is caused by an unknown image name
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformed reports whether err is caused by a malformed name or metadata entry
func IsMalformed(err error) bool {
	return errors.Is(err, ErrNoExtension) || errors.Is(err, ErrNoWidths)
}
