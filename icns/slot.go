// Package icns classifies icon bitmaps into the slots of an ICNS icon family
// and reads and writes the ICNS container.
package icns

import (
	"fmt"

	"github.com/nvr-ai/go-appbundle/images"
)

// Encoding is how a slot stores its pixels inside the container.
type Encoding int

const (
	// EncodingPNG stores a PNG stream.
	EncodingPNG Encoding = iota
	// EncodingRLE24 stores PackBits compressed R, G and B planes followed by
	// an uncompressed 8-bit alpha mask in a companion record.
	EncodingRLE24
)

func (e Encoding) String() string {
	switch e {
	case EncodingPNG:
		return "png"
	case EncodingRLE24:
		return "rle24"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Slot identifies one fixed-size icon variant of the container. The set of
// slots is closed; the zero Slot is not a slot.
type Slot int

// Slots in container order.
const (
	Icon16 Slot = iota + 1
	Icon32
	Icon16x2
	Icon48
	Icon64
	Icon32x2
	Icon128
	Icon256
	Icon128x2
	Icon512
	Icon256x2
	Icon512x2

	slotEnd
)

// slotInfo describes the complete set of attributes of a slot.
type slotInfo struct {
	// Tag is the four character record type.
	Tag string
	// MaskTag is the companion alpha record of RLE24 slots.
	MaskTag string
	// Pixels is the edge of the square bitmap the slot holds.
	Pixels int
	// Density is the scale the artwork is drawn for.
	Density images.Density
	// Encoding is the fixed payload encoding.
	Encoding Encoding
}

// slots is the taxonomy, keyed by Slot for lookups. Pixel edges are physical
// pixels: Icon16x2 holds 32x32 pixels drawn for a 16 point icon.
var slots = map[Slot]slotInfo{
	Icon16:    {Tag: "icp4", Pixels: 16, Density: images.Standard, Encoding: EncodingPNG},
	Icon32:    {Tag: "icp5", Pixels: 32, Density: images.Standard, Encoding: EncodingPNG},
	Icon16x2:  {Tag: "ic11", Pixels: 32, Density: images.Double, Encoding: EncodingPNG},
	Icon48:    {Tag: "ih32", MaskTag: "h8mk", Pixels: 48, Density: images.Standard, Encoding: EncodingRLE24},
	Icon64:    {Tag: "icp6", Pixels: 64, Density: images.Standard, Encoding: EncodingPNG},
	Icon32x2:  {Tag: "ic12", Pixels: 64, Density: images.Double, Encoding: EncodingPNG},
	Icon128:   {Tag: "ic07", Pixels: 128, Density: images.Standard, Encoding: EncodingPNG},
	Icon256:   {Tag: "ic08", Pixels: 256, Density: images.Standard, Encoding: EncodingPNG},
	Icon128x2: {Tag: "ic13", Pixels: 256, Density: images.Double, Encoding: EncodingPNG},
	Icon512:   {Tag: "ic09", Pixels: 512, Density: images.Standard, Encoding: EncodingPNG},
	Icon256x2: {Tag: "ic14", Pixels: 512, Density: images.Double, Encoding: EncodingPNG},
	Icon512x2: {Tag: "ic10", Pixels: 1024, Density: images.Double, Encoding: EncodingPNG},
}

type slotKey struct {
	pixels  int
	density images.Density
}

var (
	byKey = map[slotKey]Slot{}
	byTag = map[string]Slot{}
)

func init() {
	for s, info := range slots {
		byKey[slotKey{info.Pixels, info.Density}] = s
		byTag[info.Tag] = s
	}
}

// Classify maps the square dimension of a bitmap and its density to a slot.
// Non-square bitmaps are classified by min(width, height).
//
// Arguments:
//   - dimension: The square edge in pixels.
//   - density: The density derived from the candidate's file name.
//
// Returns:
//   - Slot: The matching slot.
//   - bool: False when no slot holds that size at that density.
func Classify(dimension int, density images.Density) (Slot, bool) {
	s, ok := byKey[slotKey{dimension, density}]
	return s, ok
}

// Slots returns every slot in container order.
func Slots() []Slot {
	all := make([]Slot, 0, len(slots))
	for s := Icon16; s < slotEnd; s++ {
		all = append(all, s)
	}
	return all
}

// SlotForTag returns the slot whose primary record has the given tag. Mask
// tags do not name a slot.
func SlotForTag(tag string) (Slot, bool) {
	s, ok := byTag[tag]
	return s, ok
}

// Valid reports whether s is part of the taxonomy.
func (s Slot) Valid() bool {
	_, ok := slots[s]
	return ok
}

// Tag returns the four character record type.
func (s Slot) Tag() string { return slots[s].Tag }

// MaskTag returns the companion mask record type, or "" if there is none.
func (s Slot) MaskTag() string { return slots[s].MaskTag }

// Pixels returns the edge of the square bitmap the slot holds.
func (s Slot) Pixels() int { return slots[s].Pixels }

// Density returns the scale the slot's artwork is drawn for.
func (s Slot) Density() images.Density { return slots[s].Density }

// Encoding returns the payload encoding of the slot.
func (s Slot) Encoding() Encoding { return slots[s].Encoding }

// String returns a human-readable summary such as "ic11 (16x16@2x)".
func (s Slot) String() string {
	info, ok := slots[s]
	if !ok {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	points := info.Pixels / int(info.Density)
	return fmt.Sprintf("%s (%dx%d%s)", info.Tag, points, points, info.Density)
}
