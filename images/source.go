package images

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"strings"

	// Decoders for every candidate format a project may ship.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// PNG color types from the IHDR chunk.
const (
	pngColorPaletted  = 3
	pngColorGrayAlpha = 4
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// FileError ties an image failure to the file it came from. It unwraps to
// both the failure kind (ErrDecode, ErrUnsupportedPixelFormat) and the cause.
type FileError struct {
	Path string
	Kind error
	Err  error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Source is a decoded image whose pixel format has not been validated yet.
// Width and Height are available so callers can reject a candidate on its
// dimensions alone.
type Source struct {
	// Path is the file the image was read from.
	Path string
	// MIME is the sniffed media type, for example "image/png".
	MIME string
	// Codec is the name of the image decoder that handled the file.
	Codec string
	// Width of the decoded image in pixels.
	Width int
	// Height of the decoded image in pixels.
	Height int

	img          image.Image
	pngColorType int
	pngDepth     int
}

// Open reads and decodes an image file.
//
// Arguments:
//   - path: The image file to read.
//
// Returns:
//   - *Source: The decoded image with its dimensions.
//   - error: A *FileError wrapping ErrDecode if the file is unreadable,
//     not an image, or corrupt.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrDecode, Err: err}
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, &FileError{Path: path, Kind: ErrDecode, Err: fmt.Errorf("not an image (%s)", mtype.String())}
	}

	img, codec, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FileError{Path: path, Kind: ErrDecode, Err: errors.Wrapf(err, "decode %s", mtype.String())}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &FileError{Path: path, Kind: ErrDecode, Err: ErrEmptyImage}
	}

	src := &Source{
		Path:         path,
		MIME:         mtype.String(),
		Codec:        codec,
		Width:        b.Dx(),
		Height:       b.Dy(),
		img:          img,
		pngColorType: -1,
	}
	if codec == "png" {
		src.pngColorType, src.pngDepth = probePNG(data)
	}
	return src, nil
}

func (s *Source) pixelFormat() (PixelFormat, string) {
	if s.pngColorType >= 0 && s.pngColorType != pngColorPaletted && s.pngDepth != 8 {
		return 0, fmt.Sprintf("%d-bit png", s.pngDepth)
	}

	switch m := s.img.(type) {
	case *image.Gray:
		return Gray8, ""
	case *image.NRGBA:
		if s.pngColorType == pngColorGrayAlpha {
			return GrayAlpha8, ""
		}
		return RGBA8, ""
	case *image.RGBA:
		if m.Opaque() {
			return RGB8, ""
		}
		return RGBA8, ""
	case *image.YCbCr:
		return RGB8, ""
	case *image.NYCbCrA:
		return RGBA8, ""
	case *image.Paletted:
		if m.Opaque() {
			return RGB8, ""
		}
		return RGBA8, ""
	default:
		return 0, fmt.Sprintf("%s color model %T", s.Codec, s.img)
	}
}

// Raster validates the pixel format and copies the pixels into a RasterImage.
//
// Returns:
//   - *RasterImage: The owned bitmap.
//   - error: A *FileError wrapping ErrUnsupportedPixelFormat.
func (s *Source) Raster() (*RasterImage, error) {
	format, reason := s.pixelFormat()
	if reason != "" {
		return nil, &FileError{Path: s.Path, Kind: ErrUnsupportedPixelFormat,
			Err: errors.Errorf("%s (%dx%d)", reason, s.Width, s.Height)}
	}
	r, err := FromImage(s.img, format)
	if err != nil {
		return nil, &FileError{Path: s.Path, Kind: ErrDecode, Err: err}
	}
	return r, nil
}

// Load opens an image file and returns its validated bitmap.
func Load(path string) (*RasterImage, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	return src.Raster()
}

// FileDecoder decodes candidates from the filesystem with Load.
type FileDecoder struct{}

// Decode implements the bundle decoder contract.
func (FileDecoder) Decode(path string) (*RasterImage, error) {
	return Load(path)
}

// probePNG reads the bit depth and color type from the IHDR chunk. It
// returns -1 for the color type if the header is not where it should be.
func probePNG(data []byte) (colorType, depth int) {
	if len(data) < 26 || !bytes.Equal(data[:8], pngSignature) || string(data[12:16]) != "IHDR" {
		return -1, 0
	}
	if binary.BigEndian.Uint32(data[8:12]) < 13 {
		return -1, 0
	}
	return int(data[25]), int(data[24])
}
