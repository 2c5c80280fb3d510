package paper

import "errors"

// Kind classifies a CreatePDF failure by the stage that produced it.
type Kind int

const (
	// KindEncryption: the plaintext could not be read or sealed.
	KindEncryption Kind = iota + 1
	// KindDocumentInit: the page size or title is invalid.
	KindDocumentInit
	// KindPDFCreation: encoding, layout or serialization failed.
	KindPDFCreation
)

var (
	ErrEncryption   = errors.New("encryption failed")
	ErrDocumentInit = errors.New("document initialization failed")
	ErrPDFCreation  = errors.New("PDF creation failed")
)

var kindPrefix = map[Kind]string{
	KindEncryption:   "Encryption failed",
	KindDocumentInit: "Document initialization failed",
	KindPDFCreation:  "PDF creation failed",
}

var kindSentinel = map[Kind]error{
	KindEncryption:   ErrEncryption,
	KindDocumentInit: ErrDocumentInit,
	KindPDFCreation:  ErrPDFCreation,
}

// Error is the single error type CreatePDF returns. errors.Is matches it
// against the sentinel of its kind and, through Unwrap, against its cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	prefix, ok := kindPrefix[e.Kind]
	if !ok {
		prefix = "paper backup failed"
	}
	return prefix + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == kindSentinel[e.Kind]
}

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
