package images

import "fmt"

// PixelFormat is the channel layout of a RasterImage. Every channel is 8 bits.
type PixelFormat int

const (
	// Gray8 is a single luminance channel.
	Gray8 PixelFormat = iota
	// GrayAlpha8 is luminance followed by straight (non-premultiplied) alpha.
	GrayAlpha8
	// RGB8 is red, green, blue.
	RGB8
	// RGBA8 is red, green, blue and straight alpha.
	RGBA8
)

// Channels returns the number of bytes each pixel occupies.
func (f PixelFormat) Channels() int {
	switch f {
	case Gray8:
		return 1
	case GrayAlpha8:
		return 2
	case RGB8:
		return 3
	case RGBA8:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the format carries an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	return f == GrayAlpha8 || f == RGBA8
}

// Valid reports whether f is one of the four supported formats.
func (f PixelFormat) Valid() bool {
	return f.Channels() > 0
}

func (f PixelFormat) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case GrayAlpha8:
		return "grayalpha8"
	case RGB8:
		return "rgb8"
	case RGBA8:
		return "rgba8"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}
