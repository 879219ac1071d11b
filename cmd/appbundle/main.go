// Command appbundle builds macOS application bundles from a manifest and
// inspects ICNS icon files.
//
//	appbundle build [-manifest Bundle.toml] [-out DIR] [-strict] [-dry-run] [-workers N]
//	appbundle inspect FILE.icns
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-appbundle/bundle"
	"github.com/nvr-ai/go-appbundle/config"
	"github.com/nvr-ai/go-appbundle/icns"
	"github.com/nvr-ai/go-appbundle/logging"
	"github.com/nvr-ai/go-appbundle/manifest"
)

const usage = `usage:
  appbundle build [-manifest FILE] [-out DIR] [-strict] [-dry-run] [-workers N]
  appbundle inspect FILE.icns`

// errUsage is returned for a bad command line; main exits with status 2.
var errUsage = errors.New(usage)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "appbundle:", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "build":
		return build(ctx, args[1:], stdout, stderr)
	case "inspect":
		return inspect(args[1:], stdout)
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return errors.Wrapf(errUsage, "unknown command %q", args[0])
	}
}

func build(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		manifestPath string
		outDir       string
		strict       bool
		dryRun       bool
		workers      int
		logLevel     string
		logDev       bool
	)
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&manifestPath, "manifest", "", "Path to Bundle.toml or bundle.yaml (default: found in the current directory)")
	fs.StringVar(&outDir, "out", cfg.OutDir, "Directory the .app bundle is written to")
	fs.BoolVar(&strict, "strict", cfg.Strict, "Fail on any unusable icon candidate")
	fs.BoolVar(&dryRun, "dry-run", false, "Resolve everything but write nothing")
	fs.IntVar(&workers, "workers", cfg.Workers, "Number of icons decoded in parallel")
	fs.StringVar(&logLevel, "log-level", cfg.Level, "Log level: debug, info, warn, error")
	fs.BoolVar(&logDev, "log-dev", cfg.Development, "Human readable console logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return errors.Wrapf(errUsage, "unexpected arguments %v", fs.Args())
	}

	logger, err := logging.New(logging.Config{Level: logLevel, Development: logDev})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if manifestPath == "" {
		if manifestPath, err = manifest.Find("."); err != nil {
			return err
		}
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	in, err := m.Inputs(ctx)
	if err != nil {
		return err
	}
	logger.Debug("manifest loaded",
		zap.String("path", manifestPath),
		zap.Int("icons", len(in.Icons)),
		zap.Int("resources", len(in.Resources)),
	)

	a := bundle.NewAssembler(bundle.Options{
		OutputRoot: outDir,
		Workers:    workers,
		Strict:     strict,
		DryRun:     dryRun,
	}, logger)
	res, err := a.Assemble(ctx, m.Descriptor(), in)
	if err != nil {
		return err
	}

	printResult(stdout, res, dryRun)
	return nil
}

func printResult(w io.Writer, res *bundle.Result, dryRun bool) {
	verb := "Bundled"
	if dryRun {
		verb = "Would bundle"
	}
	fmt.Fprintf(w, "%s %s\n", verb, res.Path)

	for _, o := range res.Icon.Outcomes {
		switch o.Action {
		case bundle.Added:
			extra := ""
			if o.Resampled {
				extra = " (resampled)"
			}
			fmt.Fprintf(w, "  icon %-8s %s -> %s%s\n", o.Action, o.Path, o.Slot, extra)
		case bundle.Skipped:
			fmt.Fprintf(w, "  icon %-8s %s: %v\n", o.Action, o.Path, o.Err)
		default:
			fmt.Fprintf(w, "  icon %-8s %s\n", o.Action, o.Path)
		}
	}
	if res.Icon.Err != nil {
		fmt.Fprintf(w, "  warning: %v\n", res.Icon.Err)
	}
	if res.Icon.Digest != "" {
		fmt.Fprintf(w, "  icon sha256 %s\n", res.Icon.Digest)
	}
	fmt.Fprintf(w, "  %d files\n", len(res.Files))
	for _, s := range res.Stages {
		fmt.Fprintf(w, "  %s\n", s)
	}
}

func inspect(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.Wrap(errUsage, "inspect takes one file")
	}
	c, err := icns.ReadFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d records\n", args[0], len(c.Records))
	for _, r := range c.Records {
		slot, ok := icns.SlotForTag(r.Tag)
		if !ok {
			fmt.Fprintf(stdout, "  %s %8d bytes\n", r.Tag, len(r.Data))
			continue
		}
		img, err := c.Decode(slot)
		if err != nil {
			fmt.Fprintf(stdout, "  %s %8d bytes  %s  decode error: %v\n", r.Tag, len(r.Data), slot, err)
			continue
		}
		b := img.Bounds()
		fmt.Fprintf(stdout, "  %s %8d bytes  %s  %dx%d %s\n", r.Tag, len(r.Data), slot, b.Dx(), b.Dy(), slot.Encoding())
	}
	return nil
}
