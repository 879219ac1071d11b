package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-appbundle/icns"
	"github.com/nvr-ai/go-appbundle/images"
	"github.com/nvr-ai/go-appbundle/profiler"
)

// Decoder turns a candidate icon file into a raster. Implementations must be
// safe for concurrent use when Options.Workers is greater than one.
type Decoder interface {
	Decode(path string) (*images.RasterImage, error)
}

// Action is what happened to one icon candidate.
type Action int

const (
	// Added means the candidate filled a slot of the synthesized family.
	Added Action = iota + 1
	// Skipped means the candidate was not used; Outcome.Err says why.
	Skipped
	// Copied means the candidate is a native container copied verbatim.
	Copied
)

func (a Action) String() string {
	switch a {
	case Added:
		return "added"
	case Skipped:
		return "skipped"
	case Copied:
		return "copied"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Outcome is the result for a single icon candidate.
type Outcome struct {
	Path   string
	Action Action
	// Slot is set for Added candidates and for duplicates.
	Slot icns.Slot
	// Resampled is true when the candidate went through the resampler.
	Resampled bool
	// Err is the reason a candidate was skipped.
	Err error
}

// IconReport describes how the bundle icon was resolved.
type IconReport struct {
	// Outcomes holds one entry per examined candidate, in input order.
	Outcomes []Outcome
	// File is the icon path inside Resources, or "" when the bundle has no icon.
	File string
	// Slots are the slots of a synthesized family in container order.
	Slots []icns.Slot
	// Digest is the SHA-256 of the synthesized container.
	Digest string
	// Err is ErrNoUsableIcons when candidates were given but none was usable.
	Err error
}

// Count returns the number of outcomes with the given action.
func (r *IconReport) Count(action Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

func isContainerPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".icns")
}

// resolveIcon produces the bundle icon from the candidate list. The first
// candidate that is a real ICNS file is copied and nothing else is read.
// Otherwise every raster candidate is decoded and placed in a new family,
// written as "<Name>.icns".
func (a *Assembler) resolveIcon(ctx context.Context, desc Descriptor, candidates []string, resources string, res *Result, tr *profiler.Tracker) (*IconReport, error) {
	report := &IconReport{}
	if len(candidates) == 0 {
		return report, nil
	}

	var rasters []string
	for _, path := range candidates {
		if !isContainerPath(path) {
			rasters = append(rasters, path)
			continue
		}

		ok, err := icns.IsContainer(path)
		if err != nil {
			return nil, stepError(ErrCopy, path, err)
		}
		if !ok {
			o := Outcome{Path: path, Action: Skipped, Err: errors.Wrap(icns.ErrMalformed, "missing icns header")}
			if err := a.record(report, o); err != nil {
				return nil, err
			}
			continue
		}

		dst := filepath.Join(resources, filepath.Base(path))
		if err := a.copy(res, path, dst); err != nil {
			return nil, err
		}
		report.File = dst
		return report, a.record(report, Outcome{Path: path, Action: Copied})
	}

	results, err := a.decodeAll(ctx, rasters, tr)
	if err != nil {
		return nil, err
	}

	family := icns.NewFamily()
	for i, path := range rasters {
		o := Outcome{Path: path, Action: Skipped, Err: results[i].err}
		if results[i].err == nil {
			o = place(family, path, results[i].img)
		}
		if err := a.record(report, o); err != nil {
			return nil, err
		}
	}

	if family.IsEmpty() {
		report.Err = errors.Wrapf(ErrNoUsableIcons, "%d candidates", len(candidates))
		if a.opts.Strict {
			return nil, report.Err
		}
		a.logger.Warn("bundle has no icon", zap.Int("candidates", len(candidates)))
		return report, nil
	}

	stop := tr.Track("encode")
	data, err := family.Serialize()
	stop()
	if err != nil {
		return nil, errors.Wrap(err, "serialize icon family")
	}
	dst := filepath.Join(resources, desc.Name+".icns")
	if err := a.write(res, dst, data, 0o644, ErrCopy); err != nil {
		return nil, err
	}
	report.File = dst
	report.Slots = family.Slots()
	report.Digest = images.Checksum(data)

	a.logger.Info("icon family written",
		zap.String("path", dst),
		zap.Int("slots", family.Len()),
		zap.Int("bytes", len(data)),
		zap.String("sha256", report.Digest),
	)
	return report, nil
}

// record appends o to the report and logs it. Under Strict a skipped
// candidate becomes the returned error.
func (a *Assembler) record(report *IconReport, o Outcome) error {
	report.Outcomes = append(report.Outcomes, o)

	fields := []zap.Field{zap.String("icon", o.Path), zap.Stringer("action", o.Action)}
	if o.Slot.Valid() {
		fields = append(fields, zap.Stringer("slot", o.Slot))
	}
	if o.Resampled {
		fields = append(fields, zap.Bool("resampled", true))
	}
	if o.Action != Skipped {
		a.logger.Debug("icon candidate", fields...)
		return nil
	}

	a.logger.Warn("icon candidate skipped", append(fields, zap.Error(o.Err))...)
	if a.opts.Strict {
		return errors.Wrapf(o.Err, "strict: icon %s skipped", o.Path)
	}
	return nil
}

type decoded struct {
	img *images.RasterImage
	err error
}

// decodeAll decodes every path into an index-addressed slice, so the caller
// can place the results in input order however the work was scheduled. A
// decode failure is stored with its candidate; only cancellation fails the
// call.
func (a *Assembler) decodeAll(ctx context.Context, paths []string, tr *profiler.Tracker) ([]decoded, error) {
	out := make([]decoded, len(paths))

	if a.opts.Workers <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			stop := tr.Track("decode")
			out[i].img, out[i].err = a.decoder.Decode(path)
			stop()
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stop := tr.Track("decode")
			img, err := a.decoder.Decode(path)
			stop()
			out[i] = decoded{img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// place classifies one decoded candidate and adds it to the family.
//
// The image is cropped to its centered square first. A size with no slot is
// resampled once to the next power of two below it and classified again; a
// power of two with no slot, or a second miss, skips the candidate.
//
// Arguments:
//   - family: The family being built.
//   - path: The candidate path, used for its density marker.
//   - img: The decoded candidate.
//
// Returns:
//   - Outcome: Added with the slot, or Skipped with the reason.
func place(family *icns.Family, path string, img *images.RasterImage) Outcome {
	o := Outcome{Path: path, Action: Skipped}
	density := images.DensityFromPath(path)
	w, h := img.Width, img.Height

	img = img.CropSquare()
	d := img.Width
	slot, ok := icns.Classify(d, density)
	if !ok {
		if images.IsPowerOfTwo(d) {
			o.Err = errors.Wrapf(icns.ErrNoMatchingSlot, "%dx%d at %s", w, h, density)
			return o
		}
		target := images.NextSizeDown(d)
		resized, err := images.Resample(img, target)
		if err != nil {
			o.Err = errors.Wrapf(err, "resample %dx%d to %d", w, h, target)
			return o
		}
		o.Resampled = true
		if slot, ok = icns.Classify(target, density); !ok {
			o.Err = errors.Wrapf(icns.ErrNoMatchingSlot, "%dx%d resampled to %d at %s", w, h, target, density)
			return o
		}
		img = resized
	}

	o.Slot = slot
	if err := family.Add(img, slot); err != nil {
		o.Err = err
		return o
	}
	o.Action = Added
	return o
}
