package images

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum generates a deterministic digest of a byte slice, used to verify
// that serialized output and pixel buffers are reproducible.
//
// Arguments:
// - data: The bytes to digest.
//
// Returns:
// - A hex-encoded SHA-256 digest.
//
// Example:
//
// ```go
//
//	sum := Checksum(raster.Pix)
//	fmt.Printf("pixels: %s\n", sum)
//
// ```
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
