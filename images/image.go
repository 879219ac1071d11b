// Package images decodes icon candidates into owned 8-bit pixel buffers and
// provides the resampling used to bring them to icon sizes.
package images

import (
	"fmt"

	"github.com/pkg/errors"
)

// RasterImage is a decoded bitmap with an owned, tightly packed pixel buffer.
//
// A RasterImage is never modified after construction. Operations such as
// Crop and Resample return a new image with a new buffer.
type RasterImage struct {
	// Width of the image in pixels.
	Width int
	// Height of the image in pixels.
	Height int
	// Format is the channel layout of Pix.
	Format PixelFormat
	// Pix holds Width*Height*Format.Channels() bytes, row-major, no padding.
	Pix []byte
}

// NewRasterImage validates the dimensions and buffer length and returns the
// image. The buffer is owned by the returned image from then on.
//
// Arguments:
//   - width: The width in pixels (must be > 0).
//   - height: The height in pixels (must be > 0).
//   - format: One of the four supported pixel formats.
//   - pix: The pixel data, exactly width*height*channels bytes.
//
// Returns:
//   - *RasterImage: The image.
//   - error: An error if any argument is invalid.
func NewRasterImage(width, height int, format PixelFormat, pix []byte) (*RasterImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}
	if !format.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedPixelFormat, "pixel format %s", format)
	}
	if want := width * height * format.Channels(); len(pix) != want {
		return nil, fmt.Errorf("pixel buffer holds %d bytes, %dx%d %s needs %d",
			len(pix), width, height, format, want)
	}
	return &RasterImage{Width: width, Height: height, Format: format, Pix: pix}, nil
}

// Square returns the edge of the largest centered square, min(Width, Height).
func (r *RasterImage) Square() int {
	if r.Width < r.Height {
		return r.Width
	}
	return r.Height
}

// IsSquare reports whether Width == Height.
func (r *RasterImage) IsSquare() bool {
	return r.Width == r.Height
}

// Stride is the number of bytes in one row.
func (r *RasterImage) Stride() int {
	return r.Width * r.Format.Channels()
}

// PixOffset returns the index of the first byte of pixel (x, y) in Pix.
func (r *RasterImage) PixOffset(x, y int) int {
	return y*r.Stride() + x*r.Format.Channels()
}

// Crop copies the rectangle starting at (x0, y0) with the given size into a
// new image of the same format.
func (r *RasterImage) Crop(x0, y0, width, height int) (*RasterImage, error) {
	if x0 < 0 || y0 < 0 || width <= 0 || height <= 0 || x0+width > r.Width || y0+height > r.Height {
		return nil, fmt.Errorf("crop %dx%d+%d+%d outside %dx%d image", width, height, x0, y0, r.Width, r.Height)
	}
	ch := r.Format.Channels()
	pix := make([]byte, width*height*ch)
	rowBytes := width * ch
	for y := 0; y < height; y++ {
		src := r.PixOffset(x0, y0+y)
		copy(pix[y*rowBytes:(y+1)*rowBytes], r.Pix[src:src+rowBytes])
	}
	return &RasterImage{Width: width, Height: height, Format: r.Format, Pix: pix}, nil
}

// CropSquare returns the centered min(Width, Height) square. A square image
// is returned as is.
func (r *RasterImage) CropSquare() *RasterImage {
	if r.IsSquare() {
		return r
	}
	d := r.Square()
	cropped, err := r.Crop((r.Width-d)/2, (r.Height-d)/2, d, d)
	if err != nil {
		// The rectangle is always inside the image.
		panic(err)
	}
	return cropped
}

func (r *RasterImage) String() string {
	return fmt.Sprintf("%dx%d %s", r.Width, r.Height, r.Format)
}
