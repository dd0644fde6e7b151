package imaging_test

import (
	"image"
	"image/color"
	"testing"

	"framepress/internal/imaging"
)

// grayFrame builds a dark frame and paints the given rectangle at the given
// luma level.
func grayFrame(w, h int, bright image.Rectangle, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := bright.Min.Y; y < bright.Max.Y; y++ {
		for x := bright.Min.X; x < bright.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

func TestDetectBordersFindsLetterbox(t *testing.T) {
	img := grayFrame(100, 80, image.Rect(10, 5, 90, 75), 255)
	m := imaging.DetectBorders(img, 30)
	want := imaging.Margins{Top: 5, Bottom: 5, Left: 10, Right: 10}
	if m != want {
		t.Fatalf("unexpected margins: %+v", m)
	}
}

func TestDetectBordersEdgesAreIndependent(t *testing.T) {
	// Bright content flush against the top-right corner: dark margins only
	// on the left and bottom.
	img := grayFrame(60, 40, image.Rect(20, 0, 60, 25), 255)
	m := imaging.DetectBorders(img, 30)
	if m.Top != 0 || m.Right != 0 {
		t.Fatalf("expected zero top/right margins, got %+v", m)
	}
	if m.Left != 20 || m.Bottom != 15 {
		t.Fatalf("expected left=20 bottom=15, got %+v", m)
	}
}

func TestDetectBordersThresholdIsStrict(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	// A single pixel exactly at the threshold keeps its row and column.
	img.Pix[img.PixOffset(5, 5)] = 30
	m := imaging.DetectBorders(img, 30)
	if m != (imaging.Margins{Top: 5, Bottom: 4, Left: 5, Right: 4}) {
		t.Fatalf("unexpected margins: %+v", m)
	}
}

func TestContentRectEmptyForFullyDarkFrame(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	rect := imaging.ContentRect(img, 30)
	if !rect.Empty() {
		t.Fatalf("expected empty rect for dark frame, got %v", rect)
	}
	if _, ok := imaging.CropBorders(img, 30); ok {
		t.Fatal("expected CropBorders to report a fully dark frame")
	}
}

func TestCropBordersIsIdempotent(t *testing.T) {
	img := grayFrame(100, 80, image.Rect(12, 8, 88, 72), 255)
	cropped, ok := imaging.CropBorders(img, 30)
	if !ok {
		t.Fatal("expected croppable frame")
	}
	if got := cropped.Bounds(); got.Dx() != 76 || got.Dy() != 64 {
		t.Fatalf("unexpected cropped size: %v", got)
	}
	if m := imaging.DetectBorders(cropped, 30); !m.Zero() {
		t.Fatalf("second crop should find zero margins, got %+v", m)
	}
	again, ok := imaging.CropBorders(cropped, 30)
	if !ok {
		t.Fatal("expected recrop to succeed")
	}
	if again.Bounds().Dx() != cropped.Bounds().Dx() || again.Bounds().Dy() != cropped.Bounds().Dy() {
		t.Fatalf("recrop changed dimensions: %v vs %v", again.Bounds(), cropped.Bounds())
	}
}

func TestApplyMarginsClampsWhenOversized(t *testing.T) {
	img := grayFrame(20, 20, image.Rect(0, 0, 20, 20), 255)
	out := imaging.ApplyMargins(img, imaging.Margins{Top: 15, Bottom: 15})
	// Margins that would remove everything leave the frame untouched.
	if out.Bounds().Dy() != 20 {
		t.Fatalf("expected clamped crop, got %v", out.Bounds())
	}
	out = imaging.ApplyMargins(img, imaging.Margins{Left: 12, Right: 8})
	if out.Bounds().Dx() != 20 {
		t.Fatalf("expected clamped horizontal crop, got %v", out.Bounds())
	}

	out = imaging.ApplyMargins(img, imaging.Margins{Top: 4, Bottom: 4, Left: 2, Right: 2})
	if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 12 {
		t.Fatalf("unexpected cropped size: %v", out.Bounds())
	}
}
