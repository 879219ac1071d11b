package images

import (
	"image"

	"golang.org/x/image/draw"
)

// ToImage exposes a RasterImage as an image.Image without losing information.
//
// Gray8 becomes *image.Gray. The other formats become *image.NRGBA: gray
// samples are replicated into R, G and B, and RGB8 gets an opaque alpha.
func ToImage(r *RasterImage) image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Format == Gray8 {
		g := image.NewGray(rect)
		for y := 0; y < r.Height; y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+r.Width], r.Pix[y*r.Stride():])
		}
		return g
	}

	dst := image.NewNRGBA(rect)
	ch := r.Format.Channels()
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Stride():]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < r.Width; x++ {
			s := src[x*ch : x*ch+ch]
			d := row[x*4 : x*4+4]
			switch r.Format {
			case GrayAlpha8:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			case RGB8:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
			case RGBA8:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], s[3]
			}
		}
	}
	return dst
}

// FromImage converts any image.Image into a RasterImage of the requested
// format. It is the inverse of ToImage for images ToImage produced.
//
// Color images converted to a gray format keep the red channel, which is
// exact for images whose channels are equal (gray artwork and anything
// ToImage built from a gray raster).
func FromImage(img image.Image, format PixelFormat) (*RasterImage, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	if format == Gray8 {
		if g, ok := img.(*image.Gray); ok {
			pix := make([]byte, w*h)
			for y := 0; y < h; y++ {
				copy(pix[y*w:(y+1)*w], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
			}
			return NewRasterImage(w, h, Gray8, pix)
		}
	}

	n, ok := img.(*image.NRGBA)
	if !ok || n.Rect.Min != (image.Point{}) {
		n = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Copy(n, image.Point{}, img, b, draw.Src, nil)
	}

	ch := format.Channels()
	pix := make([]byte, w*h*ch)
	for y := 0; y < h; y++ {
		row := n.Pix[y*n.Stride:]
		out := pix[y*w*ch:]
		for x := 0; x < w; x++ {
			s := row[x*4 : x*4+4]
			d := out[x*ch : x*ch+ch]
			switch format {
			case Gray8:
				d[0] = s[0]
			case GrayAlpha8:
				d[0], d[1] = s[0], s[3]
			case RGB8:
				d[0], d[1], d[2] = s[0], s[1], s[2]
			case RGBA8:
				copy(d, s)
			}
		}
	}
	return NewRasterImage(w, h, format, pix)
}
