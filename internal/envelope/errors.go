package envelope

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates the work factor or segment size is rejected.
	ErrInvalidParams = errors.New("invalid envelope parameters")

	// ErrAuthentication indicates the envelope failed to authenticate: wrong
	// passphrase, tampered header or body, or truncation.
	ErrAuthentication = errors.New("envelope authentication failed")

	// ErrInvalidEnvelope indicates the envelope could not be parsed. It is a
	// kind of authentication failure.
	ErrInvalidEnvelope = fmt.Errorf("%w: malformed envelope", ErrAuthentication)
)
