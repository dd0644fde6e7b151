package imaging_test

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"framepress/internal/imaging"
)

func noisyFrame(w, h int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func TestSSIMIdenticalFramesScoreOne(t *testing.T) {
	img := noisyFrame(64, 48, 1)
	if score := imaging.SSIM(img, img); score < 0.999 {
		t.Fatalf("identical frames scored %v", score)
	}
}

func TestSSIMUnrelatedFramesScoreLow(t *testing.T) {
	a := noisyFrame(64, 48, 1)
	b := noisyFrame(64, 48, 2)
	if score := imaging.SSIM(a, b); score > 0.5 {
		t.Fatalf("unrelated frames scored %v", score)
	}
}

func TestSSIMMismatchedSizesScoreZero(t *testing.T) {
	a := noisyFrame(64, 48, 1)
	b := noisyFrame(32, 48, 1)
	if score := imaging.SSIM(a, b); score != 0 {
		t.Fatalf("expected 0 for size mismatch, got %v", score)
	}
}

func TestComparatorRetainsFirstFrame(t *testing.T) {
	cmp := imaging.NewComparator(0.95)
	distinct, score := cmp.Distinct(noisyFrame(64, 48, 1), nil)
	if !distinct || score != 0 {
		t.Fatalf("first candidate must always be retained, got distinct=%v score=%v", distinct, score)
	}
}

func TestComparatorDropsNearDuplicate(t *testing.T) {
	cmp := imaging.NewComparator(0.95)
	base := noisyFrame(64, 48, 7)
	copyImg := image.NewGray(base.Bounds())
	copy(copyImg.Pix, base.Pix)
	// A single flipped pixel leaves SSIM far above the threshold.
	copyImg.SetGray(10, 10, color.Gray{Y: 255 - copyImg.GrayAt(10, 10).Y})

	distinct, score := cmp.Distinct(copyImg, base)
	if distinct {
		t.Fatalf("near-duplicate should be dropped, score=%v", score)
	}
	if score < 0.95 {
		t.Fatalf("expected score >= 0.95, got %v", score)
	}
}

func TestComparatorKeepsStructurallyDifferentFrame(t *testing.T) {
	cmp := imaging.NewComparator(0.95)
	a := noisyFrame(64, 48, 7)
	b := noisyFrame(64, 48, 8)
	distinct, score := cmp.Distinct(b, a)
	if !distinct {
		t.Fatalf("different frames should be retained, score=%v", score)
	}
}

func TestComparatorDifferentAspectAlwaysDistinct(t *testing.T) {
	cmp := imaging.NewComparator(0.95)
	a := noisyFrame(64, 48, 1)
	b := noisyFrame(96, 48, 1)
	distinct, _ := cmp.Distinct(a, b)
	if !distinct {
		t.Fatal("frames with different dimensions must be distinct")
	}
}

func TestComparatorComparesAgainstLastRetainedOnly(t *testing.T) {
	// A, then B near-identical to A, then C identical to A again but far
	// from B would still be dropped because comparison runs against the
	// last *retained* frame (A), not the last candidate (B).
	cmp := imaging.NewComparator(0.95)
	frameA := noisyFrame(64, 48, 3)

	frameB := image.NewGray(frameA.Bounds())
	copy(frameB.Pix, frameA.Pix)
	frameB.SetGray(0, 0, color.Gray{Y: 255})

	frameC := image.NewGray(frameA.Bounds())
	copy(frameC.Pix, frameA.Pix)

	retained := frameA
	if distinct, _ := cmp.Distinct(frameB, retained); distinct {
		t.Fatal("frame B should be dropped as near-duplicate of A")
	}
	// B dropped: the reference stays A.
	if distinct, _ := cmp.Distinct(frameC, retained); distinct {
		t.Fatal("frame C should be dropped against A, the last retained frame")
	}
}

func TestScaleGrayToHeightNeverUpscales(t *testing.T) {
	small := noisyFrame(100, 200, 1)
	if out := imaging.ScaleGrayToHeight(small, 480); out != small {
		t.Fatal("frames below the reference height must pass through")
	}
	large := noisyFrame(1920, 1080, 1)
	out := imaging.ScaleGrayToHeight(large, 480)
	if out.Bounds().Dy() != 480 {
		t.Fatalf("expected height 480, got %d", out.Bounds().Dy())
	}
	if out.Bounds().Dx() != 853 {
		t.Fatalf("expected aspect-preserving width 853, got %d", out.Bounds().Dx())
	}
}
