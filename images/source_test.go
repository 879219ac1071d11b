package images

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// encodeGrayAlphaPNG writes an 8-bit gray+alpha PNG by hand; image/png never
// emits that color type.
func encodeGrayAlphaPNG(t *testing.T, w, h int, pix []byte) []byte {
	t.Helper()
	chunk := func(buf *bytes.Buffer, typ string, data []byte) {
		_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
		crc := crc32.NewIEEE()
		buf.WriteString(typ)
		crc.Write([]byte(typ))
		buf.Write(data)
		crc.Write(data)
		_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
	}

	var ihdr bytes.Buffer
	_ = binary.Write(&ihdr, binary.BigEndian, uint32(w))
	_ = binary.Write(&ihdr, binary.BigEndian, uint32(h))
	ihdr.Write([]byte{8, 4, 0, 0, 0})

	var raw bytes.Buffer
	for y := 0; y < h; y++ {
		raw.WriteByte(0)
		raw.Write(pix[y*w*2 : (y+1)*w*2])
	}
	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var out bytes.Buffer
	out.Write(pngSignature)
	chunk(&out, "IHDR", ihdr.Bytes())
	chunk(&out, "IDAT", idat.Bytes())
	chunk(&out, "IEND", nil)
	return out.Bytes()
}

func TestLoadPixelFormats(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 2, color.Gray{Y: 200})

	opaque := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xff
	}
	opaque.SetNRGBA(3, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	translucent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	gaPix := make([]byte, 4*4*2)
	for i := range gaPix {
		gaPix[i] = byte(i * 9)
	}

	tests := []struct {
		name   string
		data   []byte
		format PixelFormat
	}{
		{"gray png", encodePNG(t, gray), Gray8},
		{"opaque png", encodePNG(t, opaque), RGB8},
		{"translucent png", encodePNG(t, translucent), RGBA8},
		{"gray alpha png", encodeGrayAlphaPNG(t, 4, 4, gaPix), GrayAlpha8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "icon.png", tt.data)

			r, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tt.format, r.Format)
			assert.Equal(t, 4, r.Width)
			assert.Equal(t, 4, r.Height)
			assert.Len(t, r.Pix, 16*tt.format.Channels())
		})
	}

	t.Run("gray alpha pixels", func(t *testing.T) {
		r, err := Load(writeFile(t, "ga.png", encodeGrayAlphaPNG(t, 4, 4, gaPix)))
		require.NoError(t, err)
		assert.Equal(t, gaPix, r.Pix)
	})

	t.Run("rgb pixels", func(t *testing.T) {
		r, err := Load(writeFile(t, "rgb.png", encodePNG(t, opaque)))
		require.NoError(t, err)
		assert.Equal(t, []byte{10, 20, 30}, r.Pix[r.PixOffset(3, 0):r.PixOffset(3, 0)+3])
	})
}

func TestLoadJPEGIsRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	r, err := Load(writeFile(t, "photo.jpg", buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, RGB8, r.Format)
	assert.Equal(t, 16, r.Width)
	assert.Equal(t, 8, r.Height)
}

func TestOpenExposesDimensionsBeforeValidation(t *testing.T) {
	deep := image.NewGray16(image.Rect(0, 0, 24, 12))
	path := writeFile(t, "deep.png", encodePNG(t, deep))

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 24, src.Width)
	assert.Equal(t, 12, src.Height)
	assert.Equal(t, "image/png", src.MIME)

	_, err = src.Raster()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPixelFormat)
	assert.Contains(t, err.Error(), path)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
}

func TestLoadDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.png") }},
		{"not an image", func(t *testing.T) string { return writeFile(t, "notes.png", []byte("just some text")) }},
		{"truncated png", func(t *testing.T) string {
			data := encodePNG(t, image.NewGray(image.Rect(0, 0, 8, 8)))
			return writeFile(t, "cut.png", data[:40])
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.path(t)
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
			assert.NotErrorIs(t, err, ErrUnsupportedPixelFormat)
			assert.Contains(t, err.Error(), filepath.Base(path))
		})
	}
}

func TestFileDecoderMatchesLoad(t *testing.T) {
	path := writeFile(t, "icon.png", encodePNG(t, image.NewGray(image.Rect(0, 0, 2, 2))))
	a, err := FileDecoder{}.Decode(path)
	require.NoError(t, err)
	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
