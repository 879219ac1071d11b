package icns

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Record is one typed entry of a container.
type Record struct {
	// Tag is the four character record type.
	Tag string
	// Data is the payload without the record header.
	Data []byte
}

// Container is a parsed ICNS file.
type Container struct {
	Records []Record
}

// Parse reads a whole container and splits it into records. Unknown record
// types are kept as they are.
//
// Arguments:
//   - r: The container bytes.
//
// Returns:
//   - *Container: The records in file order.
//   - error: ErrMalformed if the header or a record length is inconsistent.
func Parse(r io.Reader) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read icns")
	}
	if len(data) < headerSize || string(data[:4]) != Magic {
		return nil, errors.Wrap(ErrMalformed, "missing icns header")
	}
	if declared := int(binary.BigEndian.Uint32(data[4:8])); declared != len(data) {
		return nil, errors.Wrapf(ErrMalformed, "header declares %d bytes, file has %d", declared, len(data))
	}

	c := &Container{}
	for off := headerSize; off < len(data); {
		if off+headerSize > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "truncated record header at offset %d", off)
		}
		tag := string(data[off : off+4])
		length := int(binary.BigEndian.Uint32(data[off+4 : off+8]))
		if length < headerSize || off+length > len(data) {
			return nil, errors.Wrapf(ErrMalformed, "record %q at offset %d has bad length %d", tag, off, length)
		}
		c.Records = append(c.Records, Record{Tag: tag, Data: data[off+headerSize : off+length]})
		off += length
	}
	return c, nil
}

// ReadFile parses the container at path.
func ReadFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return c, nil
}

// IsContainer reports whether the file at path starts with the ICNS magic.
func IsContainer(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	var hdr [4]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return string(hdr[:]) == Magic, nil
}

// Record returns the payload of the first record with the given tag.
func (c *Container) Record(tag string) ([]byte, bool) {
	for _, r := range c.Records {
		if r.Tag == tag {
			return r.Data, true
		}
	}
	return nil, false
}

// Slots returns the known slots present in the container, in file order.
func (c *Container) Slots() []Slot {
	var out []Slot
	for _, r := range c.Records {
		if s, ok := SlotForTag(r.Tag); ok {
			out = append(out, s)
		}
	}
	return out
}

// Decode reverses the slot's encoding. PNG slots decode to whatever image/png
// returns; RLE24 slots decode to *image.NRGBA with the mask as alpha (opaque
// when the mask record is absent).
//
// Arguments:
//   - slot: The slot to decode.
//
// Returns:
//   - image.Image: The decoded bitmap.
//   - error: An error if the slot is absent or its payload is corrupt.
func (c *Container) Decode(slot Slot) (image.Image, error) {
	data, ok := c.Record(slot.Tag())
	if !ok {
		return nil, errors.Errorf("container has no %s record", slot)
	}

	switch slot.Encoding() {
	case EncodingPNG:
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "slot %s: %v", slot, err)
		}
		return img, nil
	case EncodingRLE24:
		return c.decodeRLE24(slot, data)
	default:
		return nil, errors.Errorf("slot %s has no decoder", slot)
	}
}

func (c *Container) decodeRLE24(slot Slot, data []byte) (image.Image, error) {
	edge := slot.Pixels()
	n := edge * edge
	planes, err := unpackBits(data, 3*n)
	if err != nil {
		return nil, errors.Wrapf(err, "slot %s", slot)
	}

	mask, hasMask := c.Record(slot.MaskTag())
	if hasMask && len(mask) != n {
		return nil, errors.Wrapf(ErrMalformed, "mask %s holds %d bytes, want %d", slot.MaskTag(), len(mask), n)
	}

	img := image.NewNRGBA(image.Rect(0, 0, edge, edge))
	for i := 0; i < n; i++ {
		a := byte(0xff)
		if hasMask {
			a = mask[i]
		}
		img.Pix[i*4+0] = planes[i]
		img.Pix[i*4+1] = planes[n+i]
		img.Pix[i*4+2] = planes[2*n+i]
		img.Pix[i*4+3] = a
	}
	return img, nil
}
