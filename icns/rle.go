package icns

import "github.com/pkg/errors"

// PackBits as used by 24-bit ICNS records: a control byte below 0x80 is
// followed by control+1 literal bytes, a control byte c >= 0x80 repeats the
// next byte c-0x80+3 times.
const (
	maxLiteral = 128
	minRun     = 3
	maxRun     = 130
)

// packBits compresses one channel plane.
func packBits(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/maxLiteral+1)
	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < maxRun && src[i+run] == src[i] {
			run++
		}
		if run >= minRun {
			out = append(out, byte(0x80+run-minRun), src[i])
			i += run
			continue
		}

		start := i
		for i < len(src) && i-start < maxLiteral {
			if i+2 < len(src) && src[i] == src[i+1] && src[i] == src[i+2] {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, src[start:i]...)
	}
	return out
}

// unpackBits expands exactly n bytes from src.
func unpackBits(src []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	i := 0
	for len(out) < n {
		if i >= len(src) {
			return nil, errors.Wrapf(ErrMalformed, "rle data ends after %d of %d bytes", len(out), n)
		}
		c := int(src[i])
		i++
		if c < 0x80 {
			count := c + 1
			if i+count > len(src) || len(out)+count > n {
				return nil, errors.Wrap(ErrMalformed, "rle literal overruns")
			}
			out = append(out, src[i:i+count]...)
			i += count
			continue
		}
		count := c - 0x80 + minRun
		if i >= len(src) || len(out)+count > n {
			return nil, errors.Wrap(ErrMalformed, "rle run overruns")
		}
		for k := 0; k < count; k++ {
			out = append(out, src[i])
		}
		i++
	}
	return out, nil
}
