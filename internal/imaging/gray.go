package imaging

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ToGray converts a raster to its single-channel luminance representation.
// Gray inputs are returned as-is.
func ToGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// ScaleGrayToHeight downsamples a luminance raster to the given height,
// preserving aspect ratio. Rasters at or below the target height are
// returned unchanged; upscaling never happens.
func ScaleGrayToHeight(gray *image.Gray, height int) *image.Gray {
	bounds := gray.Bounds()
	if height <= 0 || bounds.Dy() <= height {
		return gray
	}
	scale := float64(height) / float64(bounds.Dy())
	width := int(float64(bounds.Dx()) * scale)
	if width < 1 {
		width = 1
	}
	out := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(out, out.Bounds(), gray, bounds, xdraw.Src, nil)
	return out
}
