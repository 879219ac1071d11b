package images

import (
	"path/filepath"
	"strings"
)

// Density is the pixel scale an icon candidate was drawn for.
type Density int

const (
	// Standard is one pixel per point.
	Standard Density = 1
	// Double is two pixels per point ("retina").
	Double Density = 2
)

// DoubleDensityMarker is the file stem marker for double-density artwork,
// as in "icon_32x32@2x.png".
const DoubleDensityMarker = "@2x"

// DensityFromPath derives the density of a candidate from its file stem.
func DensityFromPath(path string) Density {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.Contains(stem, DoubleDensityMarker) {
		return Double
	}
	return Standard
}

func (d Density) String() string {
	if d == Double {
		return "@2x"
	}
	return "@1x"
}
