package document

import "errors"

var (
	// ErrInvalidTitle indicates the title cannot be embedded in the document.
	ErrInvalidTitle = errors.New("invalid document title")

	// ErrInvalidText indicates page text the PDF core fonts cannot render.
	ErrInvalidText = errors.New("text cannot be rendered")

	// ErrModuleTooSmall indicates the symbol does not fit the page at the
	// minimum printable module size.
	ErrModuleTooSmall = errors.New("QR modules too small to print reliably")
)
