package imaging

import (
	"image"
)

// DefaultCropThreshold is the luma intensity below which a pixel counts as
// border black.
const DefaultCropThreshold = 30

// Margins holds per-edge pixel offsets removed from a frame.
type Margins struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Zero reports whether no edge carries a margin.
func (m Margins) Zero() bool {
	return m.Top == 0 && m.Bottom == 0 && m.Left == 0 && m.Right == 0
}

// DetectBorders sweeps inward from each edge of the frame and returns the
// margins occupied by uniformly near-black rows and columns. A row or column
// is border when every pixel's luma is strictly below threshold. The four
// sweeps are independent: a frame letterboxed only top and bottom reports
// zero left/right margins. A fully dark frame yields margins covering the
// whole area; the retention decision belongs to the caller.
func DetectBorders(img image.Image, threshold int) Margins {
	gray := ToGray(img)
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return Margins{}
	}

	rowDark := func(y int) bool {
		offset := gray.PixOffset(bounds.Min.X, y)
		for x := 0; x < width; x++ {
			if int(gray.Pix[offset+x]) >= threshold {
				return false
			}
		}
		return true
	}
	colDark := func(x int) bool {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			if int(gray.Pix[gray.PixOffset(x, y)]) >= threshold {
				return false
			}
		}
		return true
	}

	var m Margins
	for y := bounds.Min.Y; y < bounds.Max.Y && rowDark(y); y++ {
		m.Top++
	}
	if m.Top == height {
		// Entire frame below threshold: report it all as margin.
		return Margins{Top: height, Bottom: 0, Left: width, Right: 0}
	}
	for y := bounds.Max.Y - 1; y >= bounds.Min.Y && rowDark(y); y-- {
		m.Bottom++
	}
	for x := bounds.Min.X; x < bounds.Max.X && colDark(x); x++ {
		m.Left++
	}
	for x := bounds.Max.X - 1; x >= bounds.Min.X && colDark(x); x-- {
		m.Right++
	}
	return m
}

// ContentRect returns the rectangle remaining after removing the margins
// from the frame bounds. The rectangle has zero area when the whole frame is
// below threshold.
func ContentRect(img image.Image, threshold int) image.Rectangle {
	bounds := img.Bounds()
	m := DetectBorders(img, threshold)
	rect := image.Rect(
		bounds.Min.X+m.Left,
		bounds.Min.Y+m.Top,
		bounds.Max.X-m.Right,
		bounds.Max.Y-m.Bottom,
	)
	if rect.Empty() {
		return image.Rectangle{}
	}
	return rect
}

// CropBorders removes uniformly near-black margins from the frame. It
// returns the cropped raster and false when the whole frame is below
// threshold. Cropping an already-cropped frame with the same threshold
// returns it unchanged.
func CropBorders(img image.Image, threshold int) (image.Image, bool) {
	rect := ContentRect(img, threshold)
	if rect.Empty() {
		return nil, false
	}
	if rect == img.Bounds() {
		return img, true
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if src, ok := img.(subImager); ok {
		return src.SubImage(rect), true
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			out.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return out, true
}

// ApplyMargins crops a fixed set of user-specified margins from the frame,
// clamping so at least one pixel remains in each dimension.
func ApplyMargins(img image.Image, m Margins) image.Image {
	bounds := img.Bounds()
	top, bottom := max(0, m.Top), max(0, m.Bottom)
	left, right := max(0, m.Left), max(0, m.Right)
	// image.Rect swaps inverted coordinates, so oversized margins must be
	// rejected before the rectangle is built.
	if left+right >= bounds.Dx() || top+bottom >= bounds.Dy() {
		return img
	}
	rect := image.Rect(
		bounds.Min.X+left,
		bounds.Min.Y+top,
		bounds.Max.X-right,
		bounds.Max.Y-bottom,
	)
	if rect == bounds {
		return img
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if src, ok := img.(subImager); ok {
		return src.SubImage(rect)
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			out.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return out
}
