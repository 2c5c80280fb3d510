package paper

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"paperseal/internal/document"
	"paperseal/internal/envelope"
	"paperseal/internal/qr"
	"paperseal/internal/secret"
)

// testOptions keeps Argon2 cheap so the suite stays fast.
func testOptions() Options {
	opts := DefaultOptions()
	opts.Params.KDF = envelope.WorkFactor{Time: 1, Memory: 64, Threads: 1}
	return opts
}

// countingEncrypter records calls and delegates to a real codec.
type countingEncrypter struct {
	calls int
	codec *envelope.Codec
}

func (c *countingEncrypter) Encrypt(r io.Reader, passphrase *secret.Buffer) (int, []byte, error) {
	c.calls++
	return c.codec.Encrypt(r, passphrase)
}

func newCountingEncrypter(t *testing.T, p envelope.Params) *countingEncrypter {
	t.Helper()
	codec, err := envelope.NewCodec(p)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return &countingEncrypter{codec: codec}
}

func assertKind(t *testing.T, err error, kind Kind, sentinel error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if perr.Kind != kind {
		t.Errorf("expected kind %d, got %d", kind, perr.Kind)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("errors.Is(%v, %v) = false", err, sentinel)
	}
}

func TestCreatePDFHelloWorld(t *testing.T) {
	pass := secret.FromString("passphrase")

	out, err := CreatePDF("Test Document", strings.NewReader("hello world"), pass, testOptions())
	if err != nil {
		t.Fatalf("CreatePDF failed: %v", err)
	}
	if len(out) == 0 || !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("expected non-empty PDF output")
	}
	if !pass.Destroyed() {
		t.Error("passphrase should be destroyed after success")
	}
}

func TestCreatePDFEmptyPlaintext(t *testing.T) {
	out, err := CreatePDF("Empty", strings.NewReader(""), secret.FromString("any passphrase"), testOptions())
	if err != nil {
		t.Fatalf("CreatePDF failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatal("expected PDF output")
	}
}

func TestCreatePDFCapacityExceeded(t *testing.T) {
	opts := testOptions()
	opts.PageSize = "a5"
	pass := secret.FromString("passphrase")

	out, err := CreatePDF("Too big", bytes.NewReader(make([]byte, 3000)), pass, opts)
	if out != nil {
		t.Error("no output should be returned on failure")
	}
	assertKind(t, err, KindPDFCreation, ErrPDFCreation)

	if !errors.Is(err, qr.ErrCapacityExceeded) {
		t.Errorf("expected the capacity error to be preserved, got %v", err)
	}
	var capErr *qr.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *qr.CapacityError in chain, got %v", err)
	}
	if capErr.MaxCapacity != qr.MaxCapacity(qr.DefaultLevel) || capErr.PayloadLen <= capErr.MaxCapacity {
		t.Errorf("unexpected capacity details: %+v", capErr)
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "PDF creation failed: ") || !strings.Contains(msg, "at most") {
		t.Errorf("message lacks detail: %q", msg)
	}
	if !pass.Destroyed() {
		t.Error("passphrase should be destroyed after failure")
	}
}

func TestCreatePDFUnknownPageSizeSkipsEncryption(t *testing.T) {
	opts := testOptions()
	opts.PageSize = "a3"
	enc := newCountingEncrypter(t, opts.Params)
	opts.Encrypter = enc
	pass := secret.FromString("passphrase")

	_, err := CreatePDF("Test Document", strings.NewReader("hello world"), pass, opts)
	assertKind(t, err, KindDocumentInit, ErrDocumentInit)

	if enc.calls != 0 {
		t.Errorf("encryption ran %d times before page validation failed", enc.calls)
	}
	if !strings.HasPrefix(err.Error(), "Document initialization failed: ") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !pass.Destroyed() {
		t.Error("passphrase should be destroyed when initialization fails")
	}
}

func TestCreatePDFInvalidTitleSkipsEncryption(t *testing.T) {
	opts := testOptions()
	enc := newCountingEncrypter(t, opts.Params)
	opts.Encrypter = enc

	_, err := CreatePDF("密码备份", strings.NewReader("x"), secret.FromString("p"), opts)
	assertKind(t, err, KindDocumentInit, ErrDocumentInit)
	if enc.calls != 0 {
		t.Error("encryption should not run for an invalid title")
	}
}

func TestCreatePDFInvalidLabelSkipsEncryption(t *testing.T) {
	opts := testOptions()
	opts.NotesLabel = "Schlüssel 🔑:"
	enc := newCountingEncrypter(t, opts.Params)
	opts.Encrypter = enc
	pass := secret.FromString("passphrase")

	_, err := CreatePDF("Label", strings.NewReader("x"), pass, opts)
	assertKind(t, err, KindDocumentInit, ErrDocumentInit)
	if !errors.Is(err, document.ErrInvalidText) {
		t.Errorf("expected ErrInvalidText in chain, got %v", err)
	}
	if enc.calls != 0 {
		t.Errorf("encryption ran %d times before label validation failed", enc.calls)
	}
	if !pass.Destroyed() {
		t.Error("passphrase should be destroyed when initialization fails")
	}

	// The label is never drawn without a notes line, so it is not checked.
	opts.SkipNotesLine = true
	if _, err := CreatePDF("Label", strings.NewReader("x"), secret.FromString("p"), opts); err != nil {
		t.Fatalf("CreatePDF failed: %v", err)
	}
	if enc.calls != 1 {
		t.Errorf("expected one encryption, got %d", enc.calls)
	}
}

func TestCreatePDFUsesInjectedEncrypter(t *testing.T) {
	opts := testOptions()
	enc := newCountingEncrypter(t, opts.Params)
	opts.Encrypter = enc

	if _, err := CreatePDF("Injected", strings.NewReader("data"), secret.FromString("p"), opts); err != nil {
		t.Fatalf("CreatePDF failed: %v", err)
	}
	if enc.calls != 1 {
		t.Errorf("expected one encryption, got %d", enc.calls)
	}
}

func TestCreatePDFReadFailure(t *testing.T) {
	pass := secret.FromString("passphrase")
	readErr := errors.New("disk on fire")

	_, err := CreatePDF("Broken", iotest.ErrReader(readErr), pass, testOptions())
	assertKind(t, err, KindEncryption, ErrEncryption)
	if !errors.Is(err, readErr) {
		t.Errorf("read error should be in the chain: %v", err)
	}
	if strings.Contains(err.Error(), "passphrase") {
		t.Error("error message must not contain the passphrase")
	}
	if !pass.Destroyed() {
		t.Error("passphrase should be destroyed after a read failure")
	}
}

func TestCreatePDFInvalidParams(t *testing.T) {
	opts := testOptions()
	opts.Params.SegmentSize = 1

	_, err := CreatePDF("Params", strings.NewReader("x"), secret.FromString("p"), opts)
	assertKind(t, err, KindEncryption, ErrEncryption)
	if !errors.Is(err, envelope.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams in chain, got %v", err)
	}
}

func TestCreatePDFOptionVariants(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"letter with grid", func(o *Options) { o.PageSize = "letter"; o.Grid = true }},
		{"legal skip notes", func(o *Options) { o.PageSize = "LEGAL"; o.SkipNotesLine = true }},
		{"custom label", func(o *Options) { o.NotesLabel = "Hint:" }},
		{"level H", func(o *Options) { o.Level = qr.LevelH }},
		{"binary body", func(o *Options) { o.Params.Format = envelope.FormatBinary }},
		{"empty page size is default", func(o *Options) { o.PageSize = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)

			out, err := CreatePDF("Variant", strings.NewReader("correct horse battery staple"),
				secret.FromString("passphrase"), opts)
			if err != nil {
				t.Fatalf("CreatePDF failed: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Fatal("expected PDF output")
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		kind     Kind
		sentinel error
		prefix   string
	}{
		{KindEncryption, ErrEncryption, "Encryption failed: cause"},
		{KindDocumentInit, ErrDocumentInit, "Document initialization failed: cause"},
		{KindPDFCreation, ErrPDFCreation, "PDF creation failed: cause"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			err := wrap(tt.kind, cause)
			if err.Error() != tt.prefix {
				t.Errorf("got %q, want %q", err.Error(), tt.prefix)
			}
			if !errors.Is(err, tt.sentinel) || !errors.Is(err, cause) {
				t.Error("error should match its sentinel and its cause")
			}
			for _, other := range []error{ErrEncryption, ErrDocumentInit, ErrPDFCreation} {
				if other != tt.sentinel && errors.Is(err, other) {
					t.Errorf("error should not match %v", other)
				}
			}
		})
	}
}

func TestMaxSecret(t *testing.T) {
	opts := testOptions()
	opts.PageSize = "a4"

	n, version, err := MaxSecret(opts)
	if err != nil {
		t.Fatalf("MaxSecret failed: %v", err)
	}
	if version != qr.MaxVersion || n <= 0 {
		t.Fatalf("got %d bytes at version %d", n, version)
	}

	// The limit is exact: n bytes succeed, n+1 bytes fail.
	if _, err := CreatePDF("Limit", bytes.NewReader(make([]byte, n)), secret.FromString("p"), opts); err != nil {
		t.Fatalf("secret of %d bytes should fit: %v", n, err)
	}
	_, err = CreatePDF("Limit", bytes.NewReader(make([]byte, n+1)), secret.FromString("p"), opts)
	assertKind(t, err, KindPDFCreation, ErrPDFCreation)
}

func TestMaxSecretLargerModulesLowerLimit(t *testing.T) {
	opts := testOptions()
	opts.PageSize = "a5"
	base, _, err := MaxSecret(opts)
	if err != nil {
		t.Fatalf("MaxSecret failed: %v", err)
	}

	opts.MinModuleSize = 1.0
	coarse, version, err := MaxSecret(opts)
	if err != nil {
		t.Fatalf("MaxSecret failed: %v", err)
	}
	if coarse >= base || version >= qr.MaxVersion {
		t.Errorf("1 mm modules should lower the limit: %d (v%d) vs %d", coarse, version, base)
	}

	opts.MinModuleSize = 50
	none, _, err := MaxSecret(opts)
	if err != nil || none != -1 {
		t.Errorf("expected -1 when nothing fits, got %d, %v", none, err)
	}

	opts.PageSize = "tabloid"
	if _, _, err := MaxSecret(opts); err == nil {
		t.Error("expected an error for an unknown page size")
	}
}
