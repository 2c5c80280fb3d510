package document

import (
	"github.com/go-pdf/fpdf"

	"paperseal/internal/page"
	"paperseal/internal/qr"
)

const (
	gridSpacing   = 10.0 // mm
	titleFontSize = 18.0 // pt
)

func drawTitle(pdf *fpdf.Fpdf, r Rect, text string) {
	fitFont(pdf, "Helvetica", "B", titleFontSize, text, r.W)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(r.X, r.Y)
	pdf.CellFormat(r.W, r.H, text, "", 0, "C", false, 0, "")
}

// fitFont selects the font at size, or smaller when text would be wider
// than width, and returns the size chosen. String width is linear in the
// font size, so one rescale is exact.
func fitFont(pdf *fpdf.Fpdf, family, style string, size float64, text string, width float64) float64 {
	pdf.SetFont(family, style, size)
	if w := pdf.GetStringWidth(text); w > width {
		size *= width / w
		pdf.SetFont(family, style, size)
	}
	return size
}

// drawSymbol blanks the symbol area, quiet zone included, then fills each
// horizontal run of dark modules with one rectangle.
func drawSymbol(pdf *fpdf.Fpdf, l Layout, s *qr.Symbol) {
	ox, oy := l.ModuleOrigin()
	m := l.ModuleSize

	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(l.Symbol.X, l.Symbol.Y, l.Symbol.W, l.Symbol.H, "F")

	pdf.SetFillColor(0, 0, 0)
	for y := 0; y < s.Size; y++ {
		for x := 0; x < s.Size; {
			if !s.Black(x, y) {
				x++
				continue
			}
			start := x
			for x < s.Size && s.Black(x, y) {
				x++
			}
			pdf.Rect(ox+float64(start)*m, oy+float64(y)*m, float64(x-start)*m, m, "F")
		}
	}
}

func drawNotes(pdf *fpdf.Fpdf, r Rect, label string) {
	const lineHeight = 8.0
	baseline := r.Bottom() - 4

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	w := pdf.GetStringWidth(label)
	pdf.SetXY(r.X, baseline-lineHeight+1)
	pdf.CellFormat(w, lineHeight, label, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Line(r.X+w+2, baseline, r.X+r.W, baseline)
}

func drawFooter(pdf *fpdf.Fpdf, r Rect, text string) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetXY(r.X, r.Y)
	pdf.CellFormat(r.W, r.H, text, "", 0, "C", false, 0, "")
}

// drawGrid draws a light alignment grid. It goes down first so the blanked
// symbol area covers it.
func drawGrid(pdf *fpdf.Fpdf, d page.Dimensions) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	for x := 0.0; x <= d.Width; x += gridSpacing {
		pdf.Line(x, 0, x, d.Height)
	}
	for y := 0.0; y <= d.Height; y += gridSpacing {
		pdf.Line(0, y, d.Width, y)
	}
	pdf.SetDrawColor(0, 0, 0)
}
