package bundle

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResourceRelPath maps a resource path to its location under
// Contents/Resources. Parent references become "_up_", a leading root becomes
// "_root_" and "." components are dropped, so no resource can escape the
// bundle. The path is not cleaned first: "a/../b" keeps its "_up_".
//
// Arguments:
//   - path: The resource path, usually relative to the resource root.
//
// Returns:
//   - string: The relative destination path.
//
// @example
//
//	ResourceRelPath("../shared/logo.png") // "_up_/shared/logo.png"
//	ResourceRelPath("/etc/app.conf")      // "_root_/etc/app.conf"
func ResourceRelPath(path string) string {
	var parts []string
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]
	if vol != "" || filepath.IsAbs(path) || strings.HasPrefix(filepath.ToSlash(rest), "/") {
		parts = append(parts, "_root_")
	}
	for _, p := range strings.Split(filepath.ToSlash(rest), "/") {
		switch p {
		case "", ".":
		case "..":
			parts = append(parts, "_up_")
		default:
			parts = append(parts, p)
		}
	}
	return filepath.Join(parts...)
}

// relativeTo makes path relative to root when root is set and path is inside
// or next to it; otherwise path is returned unchanged.
func relativeTo(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// copyFile copies src to dst byte for byte, creating dst's parent
// directories and keeping src's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.Errorf("%s is a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile's mode is subject to the umask.
	return os.Chmod(dst, info.Mode().Perm())
}
