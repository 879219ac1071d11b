package bundle

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoUsableIcons is reported when icon candidates were given but none
	// of them produced a slot.
	ErrNoUsableIcons = errors.New("no usable icon files")
	// ErrDirectory is the kind of failures creating or clearing the bundle tree.
	ErrDirectory = errors.New("bundle directory")
	// ErrCopy is the kind of failures copying or writing files into the bundle.
	ErrCopy = errors.New("copy")
	// ErrMetadata is the kind of failures writing Info.plist.
	ErrMetadata = errors.New("metadata")
	// ErrInvalidDescriptor is returned before any filesystem work when the
	// descriptor or inputs cannot describe a bundle.
	ErrInvalidDescriptor = errors.New("invalid bundle descriptor")
)

// StepError is a failed assembly step. It unwraps to both its Kind and the
// underlying cause, so errors.Is works against either.
type StepError struct {
	// Kind is one of ErrDirectory, ErrCopy or ErrMetadata.
	Kind error
	// Path is the file or directory the step was working on.
	Path string
	// Err is the cause.
	Err error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stepError(kind error, path string, err error) error {
	return &StepError{Kind: kind, Path: path, Err: err}
}
