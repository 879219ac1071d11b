package images

import "github.com/pkg/errors"

var (
	// ErrDecode means the file could not be read or is not a decodable image.
	ErrDecode = errors.New("decode error")
	// ErrUnsupportedPixelFormat means the image decoded but its color model or
	// channel depth is outside Gray8, GrayAlpha8, RGB8 and RGBA8.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	// ErrEmptyImage means an image has no pixels.
	ErrEmptyImage = errors.New("empty image")
)
