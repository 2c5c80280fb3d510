package document

import (
	"bufio"
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"paperseal/internal/page"
	"paperseal/internal/qr"
)

func TestFitFontKeepsTitleInsideBand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     page.Size
		wantSize float64 // zero means "smaller than the default"
	}{
		{"short title keeps size", "Recovery", page.A5, titleFontSize},
		{"longest wide title on A5", strings.Repeat("W", MaxTitleLength), page.A5, 0},
		{"longest wide title on A4", strings.Repeat("W", MaxTitleLength), page.A4, 0},
		{"empty title", "", page.Letter, titleFontSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dims(t, tt.size)
			pdf := newPDF(d)
			pdf.AddPage()

			got := fitFont(pdf, "Helvetica", "B", titleFontSize, tt.text, d.PrintableWidth())
			if w := pdf.GetStringWidth(tt.text); w > d.PrintableWidth()+1e-6 {
				t.Errorf("title is %.1f mm wide, band is %.1f mm", w, d.PrintableWidth())
			}
			if tt.wantSize != 0 && got != tt.wantSize {
				t.Errorf("font size %.2f, want %.2f", got, tt.wantSize)
			}
			if tt.wantSize == 0 && got >= titleFontSize {
				t.Errorf("font size %.2f should have shrunk", got)
			}
		})
	}
}

// pdfRect is a filled rectangle in PDF user space: points, origin at the
// bottom-left corner, with a height that may be negative.
type pdfRect struct {
	x, y, w, h float64
	gray       string
}

func (r pdfRect) contains(px, py float64) bool {
	y0, y1 := r.y, r.y+r.h
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return px >= r.x && px <= r.x+r.w && py >= y0 && py <= y1
}

// filledRects extracts every "re f" operation from an uncompressed content
// stream together with the gray fill level in effect.
func filledRects(t *testing.T, out []byte) []pdfRect {
	t.Helper()
	var rects []pdfRect
	fill := ""
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		switch {
		case len(f) == 2 && f[1] == "g":
			fill = f[0]
		case len(f) == 6 && f[4] == "re" && f[5] == "f":
			var v [4]float64
			for i := range v {
				n, err := strconv.ParseFloat(f[i], 64)
				if err != nil {
					t.Fatalf("bad rectangle operand %q: %v", f[i], err)
				}
				v[i] = n
			}
			rects = append(rects, pdfRect{v[0], v[1], v[2], v[3], fill})
		}
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return rects
}

func TestDrawSymbolReproducesModuleGrid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 120, 1500} {
		payload := make([]byte, n)
		rng.Read(payload)

		symbol, err := qr.Encode(payload, qr.LevelM)
		if err != nil {
			t.Fatalf("Encode(%d bytes) failed: %v", n, err)
		}
		d := dims(t, page.A4)
		layout, err := NewLayout(d, symbol.Size, false, DefaultMinModuleSize)
		if err != nil {
			t.Fatalf("NewLayout failed: %v", err)
		}

		pdf := newPDF(d)
		pdf.SetCompression(false)
		pdf.AddPage()
		drawSymbol(pdf, layout, symbol)
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			t.Fatalf("Output failed: %v", err)
		}

		var dark []pdfRect
		for _, r := range filledRects(t, buf.Bytes()) {
			if r.gray == "0.000" {
				dark = append(dark, r)
			}
		}
		if len(dark) == 0 {
			t.Fatal("no dark modules drawn")
		}

		// Sample every module, quiet zone included, at its centre.
		k := 72 / 25.4
		ox, oy := layout.ModuleOrigin()
		m := layout.ModuleSize
		mismatches := 0
		for y := -qr.QuietZone; y < symbol.Size+qr.QuietZone; y++ {
			for x := -qr.QuietZone; x < symbol.Size+qr.QuietZone; x++ {
				px := (ox + (float64(x)+0.5)*m) * k
				py := (d.Height - (oy + (float64(y)+0.5)*m)) * k
				drawn := false
				for _, r := range dark {
					if r.contains(px, py) {
						drawn = true
						break
					}
				}
				if drawn != symbol.Black(x, y) {
					mismatches++
				}
			}
		}
		if mismatches != 0 {
			t.Errorf("version %d: %d modules differ from the symbol", symbol.Version, mismatches)
		}
	}
}
