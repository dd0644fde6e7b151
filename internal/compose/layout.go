package compose

// Input describes one frame entering layout: its pixel dimensions after the
// uniform crop, and whether a hard page break follows it.
type Input struct {
	Width      int
	Height     int
	BreakAfter bool
}

// Placement positions a scaled frame on a page. Coordinates are raster
// pixels with the origin at the top-left corner.
type Placement struct {
	Index  int
	X, Y   int
	Width  int
	Height int
}

// Page is one composed page.
type Page struct {
	Placements []Placement
}

// LayoutOptions carries the page geometry and layout constants.
type LayoutOptions struct {
	PageWidth  int
	PageHeight int
	// Scale multiplies each frame's dimensions before placement.
	Scale float64
	// Spacing is the vertical gap between stacked frames, in pixels.
	Spacing int
}

// usableFraction bounds both the vertical stack budget and the frame width
// against the page dimensions.
const usableFraction = 0.9

// Layout assigns frames to pages in a single greedy pass. A frame whose
// addition would push the stack height strictly past the budget starts a new
// page; a stack exactly at the budget fits. A frame taller than the budget
// on its own occupies a page alone. Hard breaks flush the page after their
// frame. Each stack is centered vertically and each frame horizontally.
func Layout(frames []Input, opts LayoutOptions) []Page {
	budget := opts.PageHeight * 9 / 10
	maxWidth := opts.PageWidth * 9 / 10

	var (
		pages  []Page
		stack  []Placement
		stackH int
	)
	flush := func() {
		if len(stack) == 0 {
			return
		}
		y := (opts.PageHeight - stackH) / 2
		for i := range stack {
			stack[i].X = (opts.PageWidth - stack[i].Width) / 2
			stack[i].Y = y
			y += stack[i].Height + opts.Spacing
		}
		pages = append(pages, Page{Placements: stack})
		stack = nil
		stackH = 0
	}

	for i, frame := range frames {
		w, h := scaleFrame(frame.Width, frame.Height, opts.Scale, maxWidth, opts.PageHeight)
		if w <= 0 || h <= 0 {
			continue
		}
		candidate := stackH + h
		if len(stack) > 0 {
			candidate += opts.Spacing
		}
		if len(stack) > 0 && candidate > budget {
			flush()
			candidate = h
		}
		stack = append(stack, Placement{Index: i, Width: w, Height: h})
		stackH = candidate
		if h > budget || frame.BreakAfter {
			flush()
		}
	}
	flush()
	return pages
}

// scaleFrame applies the layout scale, clamps the width to maxWidth and the
// height to the page, preserving aspect throughout.
func scaleFrame(w, h int, scale float64, maxWidth, pageHeight int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	fw := float64(w) * scale
	fh := float64(h) * scale
	if fw > float64(maxWidth) {
		ratio := float64(maxWidth) / fw
		fw = float64(maxWidth)
		fh *= ratio
	}
	if fh > float64(pageHeight) {
		ratio := float64(pageHeight) / fh
		fh = float64(pageHeight)
		fw *= ratio
	}
	return int(fw + 0.5), int(fh + 0.5)
}
