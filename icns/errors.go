package icns

import "github.com/pkg/errors"

var (
	// ErrDuplicateSlot means the family already holds an image for the slot.
	ErrDuplicateSlot = errors.New("duplicate icon slot")
	// ErrNoMatchingSlot means no slot holds an image of that size and density.
	ErrNoMatchingSlot = errors.New("no matching icon slot")
	// ErrSizeMismatch means an image is not the size of the slot it was added to.
	ErrSizeMismatch = errors.New("image size does not match slot")
	// ErrMalformed means a container or one of its records is corrupt.
	ErrMalformed = errors.New("malformed icns data")
)
