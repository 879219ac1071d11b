// Package bundle assembles a macOS application bundle from an executable,
// resource files and icon candidates.
package bundle

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-appbundle/images"
	"github.com/nvr-ai/go-appbundle/profiler"
)

// Options control how bundles are written.
type Options struct {
	// OutputRoot is the directory the "<Name>.app" directory is created in.
	// It is required.
	OutputRoot string
	// Workers bounds parallel icon decoding. Zero or one decodes sequentially.
	Workers int
	// Strict turns every skipped icon candidate, and an icon set with no
	// usable image, into an error.
	Strict bool
	// DryRun resolves everything and reports the files it would write
	// without touching the output tree.
	DryRun bool
	// Decoder reads icon candidates. Nil means images.FileDecoder.
	Decoder Decoder
}

// Inputs are the files a bundle is made of.
type Inputs struct {
	// Binary is the executable copied to Contents/MacOS.
	Binary string
	// Icons are icon candidates in priority order.
	Icons []string
	// Resources are files copied under Contents/Resources.
	Resources []string
	// ResourceRoot, when set, is stripped from resource paths before they are
	// mapped with ResourceRelPath.
	ResourceRoot string
}

// Result describes an assembled bundle.
type Result struct {
	// Path is the "<Name>.app" directory.
	Path string
	// Icon reports how the icon was resolved.
	Icon *IconReport
	// Files lists every file written, in write order.
	Files []string
	// Stages are the step timings, in execution order.
	Stages []profiler.Stage
}

// Assembler writes bundles. It holds no per-bundle state, so one Assembler
// can build several bundles one after the other.
type Assembler struct {
	opts    Options
	decoder Decoder
	logger  *zap.Logger
}

// NewAssembler returns an Assembler.
//
// Arguments:
//   - opts: The options; a nil Decoder is replaced by images.FileDecoder.
//   - logger: The logger; nil disables logging.
//
// Returns:
//   - *Assembler: The assembler.
func NewAssembler(opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	dec := opts.Decoder
	if dec == nil {
		dec = images.FileDecoder{}
	}
	return &Assembler{opts: opts, decoder: dec, logger: logger}
}

// Assemble writes "<OutputRoot>/<Name>.app". Any existing bundle directory
// at that path is removed first; any other file there fails with
// ErrDirectory. The steps run in order: directory tree, icon, Info.plist,
// resources, binary. Icon candidates that cannot be used are reported in
// Result.Icon and do not fail the build unless Options.Strict is set. An
// .icns candidate that cannot be read fails with ErrCopy.
//
// Arguments:
//   - ctx: Checked between steps; cancellation aborts with ctx.Err().
//   - desc: The bundle identity.
//   - in: The input files.
//
// Returns:
//   - *Result: The bundle path, icon report and written files.
//   - error: ErrInvalidDescriptor, a *StepError, or a strict-mode icon error.
//
// @example
//
//	a := bundle.NewAssembler(bundle.Options{OutputRoot: "target/bundle"}, logger)
//	res, err := a.Assemble(ctx, bundle.Descriptor{
//		Name:       "Viewer",
//		Identifier: "com.example.viewer",
//		Version:    "1.2.0",
//	}, bundle.Inputs{Binary: "bin/viewer", Icons: []string{"icon_32x32@2x.png"}})
func (a *Assembler) Assemble(ctx context.Context, desc Descriptor, in Inputs) (*Result, error) {
	start := time.Now()
	if a.opts.OutputRoot == "" {
		return nil, errors.Wrap(ErrInvalidDescriptor, "output root is required")
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if in.Binary == "" {
		return nil, errors.Wrap(ErrInvalidDescriptor, "binary path is empty")
	}

	res := &Result{Path: desc.bundleDir(a.opts.OutputRoot)}
	contents := filepath.Join(res.Path, "Contents")
	macos := filepath.Join(contents, "MacOS")
	resources := filepath.Join(contents, "Resources")
	executable := desc.executable(in.Binary)

	log := a.logger.With(zap.String("bundle", res.Path), zap.Bool("dry_run", a.opts.DryRun))
	log.Info("assembling bundle", zap.String("identifier", desc.Identifier), zap.String("version", desc.Version))

	tr := profiler.NewTracker()
	stop := tr.Track("prepare")
	if err := a.prepare(res.Path, macos, resources); err != nil {
		return nil, err
	}
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop = tr.Track("icon")
	icon, err := a.resolveIcon(ctx, desc, in.Icons, resources, res, tr)
	if err != nil {
		return nil, err
	}
	res.Icon = icon
	stop()

	iconFile := ""
	if icon.File != "" {
		iconFile = filepath.Base(icon.File)
	}
	stop = tr.Track("plist")
	data, err := newInfoPlist(desc, executable, iconFile).encode()
	if err != nil {
		return nil, stepError(ErrMetadata, filepath.Join(contents, "Info.plist"), err)
	}
	if err := a.write(res, filepath.Join(contents, "Info.plist"), data, 0o644, ErrMetadata); err != nil {
		return nil, err
	}
	stop()

	stop = tr.Track("resources")
	for _, src := range in.Resources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := ResourceRelPath(relativeTo(in.ResourceRoot, src))
		if rel == "" {
			return nil, stepError(ErrCopy, src, errors.New("resource path maps to the resources directory itself"))
		}
		if err := a.copy(res, src, filepath.Join(resources, rel)); err != nil {
			return nil, err
		}
	}
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stop = tr.Track("binary")
	if err := a.copy(res, in.Binary, filepath.Join(macos, executable)); err != nil {
		return nil, err
	}
	stop()
	res.Stages = tr.Stages()

	log.Info("bundle assembled",
		zap.Int("files", len(res.Files)),
		zap.Int("icons_added", icon.Count(Added)),
		zap.Int("icons_skipped", icon.Count(Skipped)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// prepare removes any previous bundle and creates the empty tree. Only a
// directory is removed; any other file at the bundle path is an error.
func (a *Assembler) prepare(bundleDir string, dirs ...string) error {
	if a.opts.DryRun {
		return nil
	}
	info, err := os.Lstat(bundleDir)
	switch {
	case err == nil && !info.IsDir():
		return stepError(ErrDirectory, bundleDir, errors.Errorf("existing %s is not a directory", info.Mode().Type()))
	case err == nil:
		if err := os.RemoveAll(bundleDir); err != nil {
			return stepError(ErrDirectory, bundleDir, err)
		}
	case !os.IsNotExist(err):
		return stepError(ErrDirectory, bundleDir, err)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return stepError(ErrDirectory, dir, err)
		}
	}
	return nil
}

func (a *Assembler) write(res *Result, path string, data []byte, perm os.FileMode, kind error) error {
	if !a.opts.DryRun {
		if err := os.WriteFile(path, data, perm); err != nil {
			return stepError(kind, path, err)
		}
	}
	res.Files = append(res.Files, path)
	return nil
}

func (a *Assembler) copy(res *Result, src, dst string) error {
	if a.opts.DryRun {
		if _, err := os.Stat(src); err != nil {
			return stepError(ErrCopy, src, err)
		}
	} else if err := copyFile(src, dst); err != nil {
		return stepError(ErrCopy, src, err)
	}
	res.Files = append(res.Files, dst)
	return nil
}
