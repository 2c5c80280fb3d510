package document

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"paperseal/internal/page"
	"paperseal/internal/qr"
)

func mustNew(t *testing.T, title string, size page.Size) *Document {
	t.Helper()
	d, err := New(title, size)
	if err != nil {
		t.Fatalf("New(%q, %s) failed: %v", title, size, err)
	}
	return d
}

func assertPDF(t *testing.T, out []byte) {
	t.Helper()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:min(len(out), 16)])
	}
	if !bytes.Contains(out[len(out)-32:], []byte("%%EOF")) {
		t.Error("output is missing the PDF trailer")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		size    page.Size
		wantErr error
	}{
		{"valid", "Recovery Key", page.A4, nil},
		{"empty title", "", page.Letter, nil},
		{"latin-1 accents", "Clé de récupération", page.A5, nil},
		{"unknown size", "Title", page.Size(99), page.ErrUnknownPageSize},
		{"too long", strings.Repeat("x", MaxTitleLength+1), page.A4, ErrInvalidTitle},
		{"control character", "line\nbreak", page.A4, ErrInvalidTitle},
		{"not in core fonts", "回復キー", page.A4, ErrInvalidTitle},
		{"invalid utf-8", "bad\xff", page.A4, ErrInvalidTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.title, tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if d.Title() != tt.title || d.Size() != tt.size {
					t.Errorf("unexpected document: %q %s", d.Title(), d.Size())
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRenderProducesPDF(t *testing.T) {
	envelope := []byte(strings.Repeat("QUJD", 100))

	tests := []struct {
		name string
		size page.Size
		opts func(*RenderOptions)
	}{
		{"defaults", page.A4, func(*RenderOptions) {}},
		{"letter with grid", page.Letter, func(o *RenderOptions) { o.Grid = true }},
		{"skip notes", page.Legal, func(o *RenderOptions) { o.SkipNotesLine = true }},
		{"custom label", page.A5, func(o *RenderOptions) { o.NotesLabel = "Recovery key:" }},
		{"level H", page.A4, func(o *RenderOptions) { o.Level = qr.LevelH }},
		{"zero min module uses default", page.A4, func(o *RenderOptions) { o.MinModuleSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultRenderOptions()
			tt.opts(&opts)

			out, err := mustNew(t, "Test Document", tt.size).Render(envelope, opts)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			assertPDF(t, out)
		})
	}
}

func TestRenderEmptyEnvelope(t *testing.T) {
	out, err := mustNew(t, "Empty", page.A4).Render(nil, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	assertPDF(t, out)
}

func TestRenderCapacityExceeded(t *testing.T) {
	envelope := make([]byte, qr.MaxCapacity(qr.LevelM)+1)

	out, err := mustNew(t, "Too big", page.A5).Render(envelope, DefaultRenderOptions())
	if out != nil {
		t.Error("no output should be returned on failure")
	}
	if !errors.Is(err, qr.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	var capErr *qr.CapacityError
	if !errors.As(err, &capErr) || capErr.PayloadLen != len(envelope) {
		t.Errorf("capacity details lost: %v", err)
	}
}

func TestRenderModuleTooSmall(t *testing.T) {
	opts := DefaultRenderOptions()
	opts.MinModuleSize = 2.0

	_, err := mustNew(t, "Dense", page.A5).Render(make([]byte, 2000), opts)
	if !errors.Is(err, ErrModuleTooSmall) {
		t.Fatalf("expected ErrModuleTooSmall, got %v", err)
	}
}

func TestRenderRejectsUnrenderableLabel(t *testing.T) {
	opts := DefaultRenderOptions()
	opts.NotesLabel = "パスフレーズ:"

	_, err := mustNew(t, "Label", page.A4).Render([]byte("x"), opts)
	if !errors.Is(err, ErrInvalidText) {
		t.Fatalf("expected ErrInvalidText, got %v", err)
	}
}

func TestRenderIgnoresLabelWhenNotesLineSkipped(t *testing.T) {
	opts := DefaultRenderOptions()
	opts.NotesLabel = "Schlüssel 🔑:"
	opts.SkipNotesLine = true

	out, err := mustNew(t, "Skipped label", page.A5).Render([]byte("envelope"), opts)
	if err != nil {
		t.Fatalf("an omitted notes line should not be validated: %v", err)
	}
	assertPDF(t, out)
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		text  string
		valid bool
	}{
		{"Passphrase:", true},
		{"", true},
		{"Schlüssel:", true},
		{"Mot de passe €:", true},
		{"Schlüssel 🔑:", false},
		{"tab\there", false},
		{"bad\xff", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			err := ValidateText(tt.text)
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidText) {
				t.Errorf("expected ErrInvalidText, got %v", err)
			}
		})
	}
}

func TestRenderIsIndependentPerCall(t *testing.T) {
	d := mustNew(t, "Reuse", page.A4)
	for i := 0; i < 3; i++ {
		out, err := d.Render([]byte("payload"), DefaultRenderOptions())
		if err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
		assertPDF(t, out)
	}
}
