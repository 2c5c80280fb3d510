// Package paper turns a secret into a printable PDF backup: it checks the
// page and title, seals the secret under a passphrase and renders the
// envelope as a QR code.
package paper

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"paperseal/internal/document"
	"paperseal/internal/envelope"
	"paperseal/internal/page"
	"paperseal/internal/qr"
	"paperseal/internal/secret"
)

// Encrypter seals plaintext under a passphrase and takes ownership of the
// passphrase. *envelope.Codec implements it.
type Encrypter interface {
	Encrypt(r io.Reader, passphrase *secret.Buffer) (int, []byte, error)
}

// Options configures CreatePDF. Empty strings and zero sizes fall back to
// defaults, but the zero Level is LevelL; start from DefaultOptions.
type Options struct {
	NotesLabel    string // default "Passphrase:"
	SkipNotesLine bool
	PageSize      string // default "a4"
	Grid          bool
	Level         qr.Level
	MinModuleSize float64 // mm

	// Params is used to build the default Encrypter. A zero Params means
	// envelope.DefaultParams.
	Params envelope.Params

	// Encrypter replaces the envelope codec, mostly for tests.
	Encrypter Encrypter

	Logger hclog.Logger
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	return Options{
		NotesLabel:    document.DefaultNotesLabel,
		PageSize:      page.Default.String(),
		Level:         qr.DefaultLevel,
		MinModuleSize: document.DefaultMinModuleSize,
		Params:        envelope.DefaultParams(),
	}
}

// CreatePDF seals data under passphrase and returns a one-page PDF holding
// the envelope as a QR code.
//
// The page size, title and notes label are checked before anything is read
// or derived.
// The passphrase is destroyed before CreatePDF returns, whatever the outcome.
// Every error is an *Error.
func CreatePDF(title string, data io.Reader, passphrase *secret.Buffer, opts Options) ([]byte, error) {
	defer passphrase.Destroy()

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	size, err := page.Parse(opts.PageSize)
	if err != nil {
		return nil, wrap(KindDocumentInit, err)
	}
	doc, err := document.New(title, size)
	if err != nil {
		return nil, wrap(KindDocumentInit, err)
	}
	ro := renderOptions(opts, logger)
	if !ro.SkipNotesLine {
		if err := document.ValidateText(ro.NotesLabel); err != nil {
			return nil, wrap(KindDocumentInit, fmt.Errorf("notes label: %w", err))
		}
	}

	codec, err := newCodec(opts)
	if err != nil {
		return nil, wrap(KindEncryption, err)
	}
	enc := Encrypter(codec)
	if opts.Encrypter != nil {
		enc = opts.Encrypter
	}

	n, sealed, err := enc.Encrypt(data, passphrase)
	if err != nil {
		return nil, wrap(KindEncryption, err)
	}
	logger.Debug("sealed secret", "plaintext", n, "envelope", len(sealed))

	out, err := doc.Render(sealed, ro)
	if err != nil {
		return nil, wrap(KindPDFCreation, explain(err, n, size, opts, codec))
	}
	logger.Info("created PDF", "page", size.String(), "bytes", len(out))
	return out, nil
}

func newCodec(opts Options) (*envelope.Codec, error) {
	params := opts.Params
	if params == (envelope.Params{}) {
		params = envelope.DefaultParams()
	}
	return envelope.NewCodec(params)
}

func renderOptions(opts Options, logger hclog.Logger) document.RenderOptions {
	ro := document.DefaultRenderOptions()
	if opts.NotesLabel != "" {
		ro.NotesLabel = opts.NotesLabel
	}
	ro.SkipNotesLine = opts.SkipNotesLine
	ro.Grid = opts.Grid
	ro.Level = opts.Level
	if opts.MinModuleSize > 0 {
		ro.MinModuleSize = opts.MinModuleSize
	}
	ro.Logger = logger
	return ro
}

// explain adds the largest secret that would have fit to capacity and
// layout failures, so the caller can pick a larger page or a lower level.
func explain(err error, plaintextLen int, size page.Size, opts Options, codec *envelope.Codec) error {
	if !errors.Is(err, qr.ErrCapacityExceeded) && !errors.Is(err, document.ErrModuleTooSmall) {
		return err
	}
	limit, _, mErr := maxSecret(size, opts, codec)
	if mErr != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("%w; no secret fits on %s at level %s", err, size, opts.Level)
	}
	return fmt.Errorf("%w; secret is %d bytes, at most %d bytes fit on %s at level %s",
		err, plaintextLen, limit, size, opts.Level)
}

// MaxSecret returns the largest plaintext, in bytes, that CreatePDF accepts
// with opts, and the QR version it would need. It returns -1 when not even an
// empty secret fits.
func MaxSecret(opts Options) (int, int, error) {
	size, err := page.Parse(opts.PageSize)
	if err != nil {
		return 0, 0, err
	}
	codec, err := newCodec(opts)
	if err != nil {
		return 0, 0, err
	}
	return maxSecret(size, opts, codec)
}

func maxSecret(size page.Size, opts Options, codec *envelope.Codec) (int, int, error) {
	if !opts.Level.Valid() {
		return 0, 0, fmt.Errorf("invalid error correction level %s", opts.Level)
	}
	dims, err := size.Dimensions()
	if err != nil {
		return 0, 0, err
	}
	minModule := opts.MinModuleSize
	if minModule <= 0 {
		minModule = document.DefaultMinModuleSize
	}

	// Capacity grows with the version, so the largest version that still
	// prints at the minimum module size decides.
	for v := qr.MaxVersion; v >= qr.MinVersion; v-- {
		if _, err := document.NewLayout(dims, qr.Modules(v), opts.SkipNotesLine, minModule); err != nil {
			continue
		}
		n := codec.MaxPlaintext(qr.Capacity(v, opts.Level))
		if n < 0 {
			return -1, 0, nil
		}
		return n, v, nil
	}
	return -1, 0, nil
}
