package imaging

import (
	"image"
)

const (
	// DefaultSimilarityThreshold is the SSIM score at or above which two
	// frames count as near-duplicates.
	DefaultSimilarityThreshold = 0.95
	// referenceHeight is the height both frames are downsampled to before
	// scoring. Comparison cost stays bounded regardless of source size.
	referenceHeight = 480

	ssimWindow = 8
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// Comparator decides whether a candidate frame is perceptually distinct from
// the most recently retained frame.
type Comparator struct {
	threshold float64
}

// NewComparator returns a comparator using the given SSIM threshold in (0, 1].
func NewComparator(threshold float64) *Comparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Comparator{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (c *Comparator) Threshold() float64 {
	return c.threshold
}

// Distinct reports whether the candidate should be retained as a new frame.
// Both rasters are downsampled to the reference height and converted to
// luminance before scoring. The candidate is retained iff its SSIM score
// against the retained frame is strictly below the threshold. Frames whose
// downsampled dimensions differ cannot be near-duplicates and are always
// distinct.
func (c *Comparator) Distinct(candidate, retained image.Image) (bool, float64) {
	if retained == nil {
		return true, 0
	}
	a := ScaleGrayToHeight(ToGray(candidate), referenceHeight)
	b := ScaleGrayToHeight(ToGray(retained), referenceHeight)
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return true, 0
	}
	score := SSIM(a, b)
	return score < c.threshold, score
}

// SSIM computes the mean structural similarity between two equally sized
// luminance rasters over non-overlapping 8x8 windows. The result is in
// [-1, 1]; 1 means identical.
func SSIM(a, b *image.Gray) float64 {
	width := a.Bounds().Dx()
	height := a.Bounds().Dy()
	if width != b.Bounds().Dx() || height != b.Bounds().Dy() || width == 0 || height == 0 {
		return 0
	}

	var total float64
	var windows int
	for y := 0; y < height; y += ssimWindow {
		wh := min(ssimWindow, height-y)
		for x := 0; x < width; x += ssimWindow {
			ww := min(ssimWindow, width-x)
			total += windowSSIM(a, b, x, y, ww, wh)
			windows++
		}
	}
	if windows == 0 {
		return 0
	}
	return total / float64(windows)
}

func windowSSIM(a, b *image.Gray, x0, y0, w, h int) float64 {
	n := float64(w * h)
	var sumA, sumB float64
	for y := 0; y < h; y++ {
		offA := a.PixOffset(a.Bounds().Min.X+x0, a.Bounds().Min.Y+y0+y)
		offB := b.PixOffset(b.Bounds().Min.X+x0, b.Bounds().Min.Y+y0+y)
		for x := 0; x < w; x++ {
			sumA += float64(a.Pix[offA+x])
			sumB += float64(b.Pix[offB+x])
		}
	}
	muA := sumA / n
	muB := sumB / n

	var varA, varB, cov float64
	for y := 0; y < h; y++ {
		offA := a.PixOffset(a.Bounds().Min.X+x0, a.Bounds().Min.Y+y0+y)
		offB := b.PixOffset(b.Bounds().Min.X+x0, b.Bounds().Min.Y+y0+y)
		for x := 0; x < w; x++ {
			da := float64(a.Pix[offA+x]) - muA
			db := float64(b.Pix[offB+x]) - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	return ((2*muA*muB + ssimC1) * (2*cov + ssimC2)) /
		((muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2))
}
