package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	xdraw "golang.org/x/image/draw"

	"framepress/internal/imaging"
	"framepress/internal/services"
)

// Job describes one composition run.
type Job struct {
	// FramePaths lists the frame PNGs in sequence order.
	FramePaths []string
	// Breaks marks frames followed by a hard page break; same length as
	// FramePaths.
	Breaks []bool
	// Output is the PDF path to write.
	Output string
	// Crop is the uniform margin trimmed from every frame before layout.
	Crop        imaging.Margins
	Orientation Orientation
	// DPI sets the page raster resolution.
	DPI int
	// Preview trades interpolation quality for speed.
	Preview bool
	Scale   float64
	Spacing int
}

// Progress receives human-readable composition updates in [0,100].
type Progress func(message string, percent float64)

// Run composes the frames into a paginated PDF. It is synchronous and pure
// apart from reading the frame files and writing the output; a failed run
// removes any partial output file.
func Run(ctx context.Context, job Job, progress Progress) error {
	if progress == nil {
		progress = func(string, float64) {}
	}
	if len(job.FramePaths) == 0 {
		return services.Wrap(services.ErrCompositionFailed, "compose", "layout",
			"no frames to compose", nil)
	}

	if err := run(ctx, job, progress); err != nil {
		_ = os.Remove(job.Output)
		return err
	}
	return nil
}

func run(ctx context.Context, job Job, progress Progress) error {
	pageW, pageH := PageSize(job.Orientation, job.DPI)

	progress("loading frames", 0)
	images := make([]image.Image, 0, len(job.FramePaths))
	inputs := make([]Input, 0, len(job.FramePaths))
	for i, path := range job.FramePaths {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := loadPNG(path)
		if err != nil {
			return services.Wrap(services.ErrCompositionFailed, "compose", "load",
				fmt.Sprintf("read frame %s", filepath.Base(path)), err)
		}
		if !job.Crop.Zero() {
			img = imaging.ApplyMargins(img, job.Crop)
		}
		bounds := img.Bounds()
		images = append(images, img)
		inputs = append(inputs, Input{
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
			BreakAfter: i < len(job.Breaks) && job.Breaks[i],
		})
		progress("loading frames", float64(i+1)/float64(len(job.FramePaths))*30)
	}

	pages := Layout(inputs, LayoutOptions{
		PageWidth:  pageW,
		PageHeight: pageH,
		Scale:      job.Scale,
		Spacing:    job.Spacing,
	})
	if len(pages) == 0 {
		return services.Wrap(services.ErrCompositionFailed, "compose", "layout",
			"layout produced no pages", nil)
	}

	staging, err := os.MkdirTemp(filepath.Dir(job.Output), ".pages-*")
	if err != nil {
		return services.Wrap(services.ErrCompositionFailed, "compose", "render",
			"create staging directory", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	pagePaths := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		canvas := renderPage(page, images, pageW, pageH, job.Preview)
		path := filepath.Join(staging, fmt.Sprintf("page_%04d.png", i))
		if err := writePNG(path, canvas); err != nil {
			return services.Wrap(services.ErrCompositionFailed, "compose", "render",
				fmt.Sprintf("write page %d", i+1), err)
		}
		pagePaths = append(pagePaths, path)
		progress(fmt.Sprintf("rendered page %d/%d", i+1, len(pages)),
			30+float64(i+1)/float64(len(pages))*60)
	}

	progress("assembling pdf", 90)
	if err := api.ImportImagesFile(pagePaths, job.Output, nil, model.NewDefaultConfiguration()); err != nil {
		return services.Wrap(services.ErrCompositionFailed, "compose", "assemble",
			"import page images", err)
	}
	progress(fmt.Sprintf("wrote %d pages", len(pages)), 100)
	return nil
}

// renderPage draws the page's placements onto a white canvas.
func renderPage(page Page, images []image.Image, pageW, pageH int, preview bool) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, pageW, pageH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	var scaler xdraw.Scaler = xdraw.CatmullRom
	if preview {
		scaler = xdraw.ApproxBiLinear
	}
	for _, placement := range page.Placements {
		src := images[placement.Index]
		dst := image.Rect(placement.X, placement.Y,
			placement.X+placement.Width, placement.Y+placement.Height)
		scaler.Scale(canvas, dst, src, src.Bounds(), xdraw.Over, nil)
	}
	return canvas
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return png.Decode(f)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
