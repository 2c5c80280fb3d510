// Package document lays an encrypted envelope out as a QR code on a single
// PDF page.
//
// New validates the page size and title up front, before any secret is
// touched. Render encodes the envelope, computes the layout and serializes
// the page. Render builds a fresh PDF each call and never returns partial
// output.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding/charmap"

	"paperseal/internal/page"
	"paperseal/internal/qr"
)

const (
	// MaxTitleLength is the longest title, in characters. Long titles are
	// drawn in a smaller font so they stay inside the title band.
	MaxTitleLength = 64

	// DefaultNotesLabel labels the handwritten notes line.
	DefaultNotesLabel = "Passphrase:"

	creator = "paperseal"
	subject = "Encrypted paper backup"
)

// Document is a validated title and page size.
type Document struct {
	title     string // UTF-8, for metadata
	titleText string // Windows-1252, for the page
	size      page.Size
	dims      page.Dimensions
}

// RenderOptions controls the page content.
type RenderOptions struct {
	Grid          bool
	NotesLabel    string
	SkipNotesLine bool
	Level         qr.Level
	MinModuleSize float64 // mm; zero means DefaultMinModuleSize
	Logger        hclog.Logger
}

// DefaultRenderOptions returns the options used when the caller sets none.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		NotesLabel:    DefaultNotesLabel,
		Level:         qr.DefaultLevel,
		MinModuleSize: DefaultMinModuleSize,
	}
}

// New validates title and size.
func New(title string, size page.Size) (*Document, error) {
	dims, err := size.Dimensions()
	if err != nil {
		return nil, err
	}

	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return nil, fmt.Errorf("%w: %d characters, at most %d allowed", ErrInvalidTitle, n, MaxTitleLength)
	}
	text, err := encodeText(title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTitle, err)
	}

	return &Document{
		title:     title,
		titleText: text,
		size:      size,
		dims:      dims,
	}, nil
}

// Title returns the document title.
func (d *Document) Title() string {
	return d.title
}

// Size returns the page size.
func (d *Document) Size() page.Size {
	return d.size
}

// Render encodes envelope into a QR symbol and returns the PDF bytes.
func (d *Document) Render(envelope []byte, opts RenderOptions) ([]byte, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	minModule := opts.MinModuleSize
	if minModule <= 0 {
		minModule = DefaultMinModuleSize
	}

	var label string
	if !opts.SkipNotesLine {
		text, err := encodeText(opts.NotesLabel)
		if err != nil {
			return nil, fmt.Errorf("%w: notes label: %v", ErrInvalidText, err)
		}
		label = text
	}

	symbol, err := qr.Encode(envelope, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	logger.Debug("encoded symbol", "version", symbol.Version, "level", symbol.Level.String(),
		"mask", symbol.Mask, "payload", len(envelope), "capacity", symbol.Capacity)

	layout, err := NewLayout(d.dims, symbol.Size, opts.SkipNotesLine, minModule)
	if err != nil {
		return nil, err
	}
	logger.Debug("laid out page", "page", d.size.String(), "module_mm", layout.ModuleSize,
		"symbol_mm", layout.Symbol.W)

	pdf := newPDF(d.dims)
	pdf.SetTitle(d.title, true)
	pdf.SetCreator(creator, false)
	pdf.SetSubject(subject, false)
	pdf.AddPage()

	if opts.Grid {
		drawGrid(pdf, d.dims)
	}
	drawTitle(pdf, layout.Title, d.titleText)
	drawSymbol(pdf, layout, symbol)
	if !opts.SkipNotesLine {
		drawNotes(pdf, layout.Notes, label)
	}
	drawFooter(pdf, layout.Footer, fmt.Sprintf("QR version %d-%s, %d bytes. Recover with: paperseal decrypt",
		symbol.Version, symbol.Level, len(envelope)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// newPDF returns an empty portrait document in millimetres sized to dims.
func newPDF(dims page.Dimensions) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: dims.Width, Ht: dims.Height},
	})
	pdf.SetMargins(dims.Margin, dims.Margin, dims.Margin)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// ValidateText reports whether s can be drawn on the page, so callers can
// reject a label before any expensive work.
func ValidateText(s string) error {
	if _, err := encodeText(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidText, err)
	}
	return nil
}

// encodeText converts s to Windows-1252, the encoding of the PDF core fonts.
func encodeText(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errors.New("not valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("contains control character %U", r)
		}
	}
	out, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%q is not representable in the PDF core fonts: %v", s, err)
	}
	return out, nil
}
