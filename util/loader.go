package util

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/pkg/errors"
)

// ErrNoMatch is returned when a pattern without wildcards names a file that
// does not exist.
var ErrNoMatch = errors.New("no such file")

// ExpandIcons expands icon patterns into files.
//
// Patterns keep their order, so the first pattern's matches come first and
// take priority downstream; the matches of a single pattern are sorted. A path
// matched twice is kept at its first position and directories are dropped.
//
// Arguments:
//   - base: Directory relative patterns are resolved against.
//   - patterns: Paths or doublestar globs such as "icons/*.png".
//
// Returns:
//   - []string: The matched files.
//   - error: ErrNoMatch for a literal path that does not exist, or a bad pattern.
func ExpandIcons(base string, patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := glob(base, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if info.IsDir() || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// CollectResources expands resource patterns into files. Matched directories
// are walked recursively; the files found under each directory are sorted.
//
// Arguments:
//   - ctx: Cancels a running walk.
//   - base: Directory relative patterns are resolved against.
//   - patterns: Paths, directories or doublestar globs.
//
// Returns:
//   - []string: Every file, each once, in pattern order.
//   - error: ErrNoMatch, a bad pattern, or a walk failure.
//
// @example
//
//	files, err := util.CollectResources(ctx, "/src/app", []string{"assets", "docs/**/*.md"})
func CollectResources(ctx context.Context, base string, patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	for _, pattern := range patterns {
		matches, err := glob(base, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			files, err := walkFiles(ctx, m)
			if err != nil {
				return nil, err
			}
			add(files...)
		}
	}
	return out, nil
}

// glob resolves one pattern against base and sorts the matches.
func glob(base, pattern string) ([]string, error) {
	full := pattern
	if !filepath.IsAbs(full) {
		full = filepath.Join(base, pattern)
	}
	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return nil, errors.Wrapf(err, "pattern %q", pattern)
	}
	if len(matches) == 0 && !hasMeta(pattern) {
		return nil, errors.Wrapf(ErrNoMatch, "%s", full)
	}
	sort.Strings(matches)
	return matches, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// walkFiles lists every file under root. fastwalk calls back
// from several goroutines, so results are collected under a lock and sorted.
func walkFiles(ctx context.Context, root string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			// Links to directories are not followed.
			if info, err := os.Stat(p); err != nil || info.IsDir() {
				return nil
			}
		}
		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(files)
	return files, nil
}
