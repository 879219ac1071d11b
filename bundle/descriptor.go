package bundle

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Descriptor is the identity of a bundle: the values that end up in
// Info.plist and in the bundle's file names.
type Descriptor struct {
	// Name is the bundle name; the bundle directory is "<Name>.app".
	Name string
	// BinaryName is the executable's file name inside Contents/MacOS. Empty
	// means the base name of the input binary.
	BinaryName string
	// Identifier is the reverse-DNS bundle identifier.
	Identifier string
	// Version is used for both CFBundleVersion and CFBundleShortVersionString.
	Version string
	// Copyright is optional.
	Copyright string
	// MinimumSystemVersion is optional, for example "10.13".
	MinimumSystemVersion string
	// Category is an optional LSApplicationCategoryType such as
	// "public.app-category.developer-tools".
	Category string
}

// Validate checks that the descriptor names a bundle that can be written.
//
// Returns:
//   - error: ErrInvalidDescriptor naming the first bad field.
func (d Descriptor) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return errors.Wrap(ErrInvalidDescriptor, "name is empty")
	case strings.TrimSpace(d.Identifier) == "":
		return errors.Wrap(ErrInvalidDescriptor, "identifier is empty")
	case strings.TrimSpace(d.Version) == "":
		return errors.Wrap(ErrInvalidDescriptor, "version is empty")
	}
	if !plainName(d.Name) {
		return errors.Wrapf(ErrInvalidDescriptor, "name %q is not a plain file name", d.Name)
	}
	if d.BinaryName != "" && !plainName(d.BinaryName) {
		return errors.Wrapf(ErrInvalidDescriptor, "binary name %q is not a plain file name", d.BinaryName)
	}
	return nil
}

// executable returns the file name of the binary inside Contents/MacOS.
func (d Descriptor) executable(binary string) string {
	if d.BinaryName != "" {
		return d.BinaryName
	}
	return filepath.Base(binary)
}

// bundleDir is the "<Name>.app" directory under root.
func (d Descriptor) bundleDir(root string) string {
	return filepath.Join(root, d.Name+".app")
}

func plainName(v string) bool {
	return !strings.ContainsAny(v, `/\`) && v != "." && v != ".."
}
