package document

import (
	"fmt"
	"math"

	"paperseal/internal/page"
	"paperseal/internal/qr"
)

// DefaultMinModuleSize is the smallest module edge, in millimetres, that
// prints reliably: six dots at 300 dpi.
const DefaultMinModuleSize = 0.5

const (
	titleBandHeight  = 20.0
	notesBandHeight  = 25.0
	footerBandHeight = 8.0
)

// Rect is an axis-aligned rectangle in millimetres from the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Layout places the bands and the symbol on a page.
type Layout struct {
	Page       page.Dimensions
	Title      Rect
	Notes      Rect // empty when the notes line is skipped
	Footer     Rect
	Symbol     Rect // the symbol including its quiet zone
	Modules    int  // modules per side, quiet zone excluded
	ModuleSize float64
}

// NewLayout stacks title, symbol, notes and footer inside the printable
// area and makes the symbol as large as the remaining space allows. It fails
// with ErrModuleTooSmall when modules would be smaller than minModuleSize.
func NewLayout(dims page.Dimensions, modules int, skipNotes bool, minModuleSize float64) (Layout, error) {
	left := dims.Margin
	width := dims.PrintableWidth()

	l := Layout{
		Page:    dims,
		Modules: modules,
		Title:   Rect{X: left, Y: dims.Margin, W: width, H: titleBandHeight},
		Footer:  Rect{X: left, Y: dims.Height - dims.Margin - footerBandHeight, W: width, H: footerBandHeight},
	}

	areaTop := l.Title.Bottom()
	areaBottom := l.Footer.Y
	if !skipNotes {
		l.Notes = Rect{X: left, Y: areaBottom - notesBandHeight, W: width, H: notesBandHeight}
		areaBottom = l.Notes.Y
	}

	side := math.Min(width, areaBottom-areaTop)
	total := modules + 2*qr.QuietZone
	if side <= 0 || modules <= 0 {
		return Layout{}, fmt.Errorf("%w: no room for the symbol", ErrModuleTooSmall)
	}

	l.ModuleSize = side / float64(total)
	if l.ModuleSize < minModuleSize {
		return Layout{}, fmt.Errorf("%w: %d modules need %.2f mm each but only %.2f mm fit; choose a larger page or a lower error correction level",
			ErrModuleTooSmall, total, minModuleSize, l.ModuleSize)
	}

	side = l.ModuleSize * float64(total)
	l.Symbol = Rect{
		X: left + (width-side)/2,
		Y: areaTop + (areaBottom-areaTop-side)/2,
		W: side,
		H: side,
	}
	return l, nil
}

// ModuleOrigin is the top-left corner of the first data module, inside the
// quiet zone.
func (l Layout) ModuleOrigin() (x, y float64) {
	q := float64(qr.QuietZone) * l.ModuleSize
	return l.Symbol.X + q, l.Symbol.Y + q
}
