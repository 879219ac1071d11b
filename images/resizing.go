package images

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
)

// NextSizeDown returns the largest power of two that is <= d, computed as
// 2^floor(log2(d)). It returns d itself when d is already a power of two,
// and 0 for d < 1.
//
// Arguments:
//   - d: The square dimension of an image.
//
// Returns:
//   - int: The target edge for downsampling.
//
// @example
// NextSizeDown(300) // 256
// NextSizeDown(256) // 256
func NextSizeDown(d int) int {
	if d < 1 {
		return 0
	}
	target := int(math32.Pow(2, math32.Floor(math32.Log2(float32(d)))))
	// float32 rounding near large powers of two.
	for target > d {
		target >>= 1
	}
	for target<<1 > 0 && target<<1 <= d {
		target <<= 1
	}
	return target
}

// IsPowerOfTwo reports whether d is a positive power of two.
func IsPowerOfTwo(d int) bool {
	return d > 0 && d&(d-1) == 0
}

// Resample returns a new size x size image in the same pixel format, resized
// with a Lanczos3 filter. The source is never modified; a non-square source
// is scaled on both axes to fill the square.
//
// Arguments:
//   - src: The image to resample.
//   - size: The target edge in pixels.
//
// Returns:
//   - *RasterImage: The resampled image with a new pixel buffer.
//   - error: An error if size is not positive.
func Resample(src *RasterImage, size int) (*RasterImage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid resample size: %d", size)
	}
	resized := resize.Resize(uint(size), uint(size), ToImage(src), resize.Lanczos3)
	return FromImage(resized, src.Format)
}
