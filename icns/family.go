package icns

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-appbundle/images"
)

// Magic is the four byte signature that starts every ICNS file.
const Magic = "icns"

// headerSize is the size of the file header and of every record header:
// four type bytes and a big-endian uint32 length that includes the header.
const headerSize = 8

// Family accumulates one bitmap per slot and serializes them into an ICNS
// container. It is not safe for concurrent use.
type Family struct {
	icons map[Slot]*images.RasterImage
}

// NewFamily returns an empty family.
func NewFamily() *Family {
	return &Family{icons: make(map[Slot]*images.RasterImage)}
}

// Add stores img under slot. The first image added for a slot wins; a second
// one is rejected with ErrDuplicateSlot and leaves the family unchanged.
//
// Arguments:
//   - img: A bitmap exactly slot.Pixels() on each side.
//   - slot: The slot returned by Classify for img.
//
// Returns:
//   - error: ErrDuplicateSlot, ErrSizeMismatch, or an error for an unknown slot.
func (f *Family) Add(img *images.RasterImage, slot Slot) error {
	if !slot.Valid() {
		return errors.Errorf("unknown icon slot %d", int(slot))
	}
	if img == nil {
		return errors.Wrapf(images.ErrEmptyImage, "slot %s", slot)
	}
	if _, ok := f.icons[slot]; ok {
		return errors.Wrapf(ErrDuplicateSlot, "slot %s", slot)
	}
	if img.Width != slot.Pixels() || img.Height != slot.Pixels() {
		return errors.Wrapf(ErrSizeMismatch, "%dx%d image for slot %s", img.Width, img.Height, slot)
	}
	f.icons[slot] = img
	return nil
}

// Has reports whether slot is occupied.
func (f *Family) Has(slot Slot) bool {
	_, ok := f.icons[slot]
	return ok
}

// Image returns the bitmap stored for slot.
func (f *Family) Image(slot Slot) (*images.RasterImage, bool) {
	img, ok := f.icons[slot]
	return img, ok
}

// Len returns the number of occupied slots.
func (f *Family) Len() int { return len(f.icons) }

// IsEmpty reports whether no slot is occupied.
func (f *Family) IsEmpty() bool { return len(f.icons) == 0 }

// Slots returns the occupied slots in container order.
func (f *Family) Slots() []Slot {
	out := make([]Slot, 0, len(f.icons))
	for s := range f.icons {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type record struct {
	tag  string
	data []byte
}

// records encodes every occupied slot in container order.
func (f *Family) records() ([]record, error) {
	var out []record
	for _, slot := range f.Slots() {
		img := f.icons[slot]
		switch slot.Encoding() {
		case EncodingPNG:
			data, err := encodePNG(img)
			if err != nil {
				return nil, errors.Wrapf(err, "encode slot %s", slot)
			}
			out = append(out, record{tag: slot.Tag(), data: data})
		case EncodingRLE24:
			color, mask := encodeRLE24(img)
			out = append(out, record{tag: slot.Tag(), data: color}, record{tag: slot.MaskTag(), data: mask})
		default:
			return nil, errors.Errorf("slot %s has no encoder", slot)
		}
	}
	return out, nil
}

// WriteTo writes the container to w.
//
// Arguments:
//   - w: The destination writer.
//
// Returns:
//   - int64: The number of bytes written.
//   - error: An encoding or write error.
func (f *Family) WriteTo(w io.Writer) (int64, error) {
	recs, err := f.records()
	if err != nil {
		return 0, err
	}

	total := headerSize
	for _, r := range recs {
		total += headerSize + len(r.data)
	}

	cw := &countingWriter{w: w}
	writeHeader(cw, Magic, total)
	for _, r := range recs {
		writeHeader(cw, r.tag, headerSize+len(r.data))
		if cw.err == nil {
			_, cw.err = cw.Write(r.data)
		}
	}
	return cw.n, errors.Wrap(cw.err, "write icns")
}

// Serialize returns the container bytes.
func (f *Family) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the SHA-256 of the serialized container.
func (f *Family) Digest() (string, error) {
	data, err := f.Serialize()
	if err != nil {
		return "", err
	}
	return images.Checksum(data), nil
}

func writeHeader(cw *countingWriter, tag string, length int) {
	if cw.err != nil {
		return
	}
	var hdr [headerSize]byte
	copy(hdr[:4], tag)
	binary.BigEndian.PutUint32(hdr[4:], uint32(length))
	_, cw.err = cw.Write(hdr[:])
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// encodePNG writes the raster as a PNG in its own color type: gray, RGB or
// RGBA (gray+alpha is widened to RGBA with equal color channels).
func encodePNG(img *images.RasterImage) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, images.ToImage(img)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeRLE24 returns the PackBits R, G, B planes and the raw alpha mask.
func encodeRLE24(img *images.RasterImage) (color, mask []byte) {
	n := img.Width * img.Height
	planes := [3][]byte{make([]byte, n), make([]byte, n), make([]byte, n)}
	mask = make([]byte, n)

	ch := img.Format.Channels()
	for i := 0; i < n; i++ {
		px := img.Pix[i*ch : i*ch+ch]
		switch img.Format {
		case images.Gray8:
			planes[0][i], planes[1][i], planes[2][i], mask[i] = px[0], px[0], px[0], 0xff
		case images.GrayAlpha8:
			planes[0][i], planes[1][i], planes[2][i], mask[i] = px[0], px[0], px[0], px[1]
		case images.RGB8:
			planes[0][i], planes[1][i], planes[2][i], mask[i] = px[0], px[1], px[2], 0xff
		case images.RGBA8:
			planes[0][i], planes[1][i], planes[2][i], mask[i] = px[0], px[1], px[2], px[3]
		}
	}

	for _, p := range planes {
		color = append(color, packBits(p)...)
	}
	return color, mask
}
