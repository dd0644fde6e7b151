package compose

import (
	"fmt"
	"strings"
)

// A4 sheet dimensions.
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
	mmPerInch  = 25.4
)

// Orientation selects how the A4 sheet is turned.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation normalizes a user-supplied orientation value.
func ParseOrientation(value string) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(value))) {
	case Portrait, "":
		return Portrait, nil
	case Landscape:
		return Landscape, nil
	default:
		return "", fmt.Errorf("unknown orientation %q (expected portrait or landscape)", value)
	}
}

// PageSize returns the A4 raster dimensions in pixels at the given DPI.
func PageSize(orientation Orientation, dpi int) (int, int) {
	w := int(a4WidthMM/mmPerInch*float64(dpi) + 0.5)
	h := int(a4HeightMM/mmPerInch*float64(dpi) + 0.5)
	if orientation == Landscape {
		return h, w
	}
	return w, h
}
