package envelope

import "fmt"

const (
	// Version is the envelope header version written by this package.
	Version = "1"

	// Algorithm identifies the streaming AEAD used for the body.
	Algorithm = "AES256-GCM-HKDF-SHA256"

	// KDFAlgorithm identifies the passphrase key derivation.
	KDFAlgorithm = "argon2id"
)

// Format selects how the ciphertext body follows the header line.
type Format string

const (
	// FormatBinary writes the raw ciphertext after the header line.
	FormatBinary Format = "binary"
	// FormatBase64 writes the ciphertext as padded standard base64, which
	// survives QR scanner apps that only hand back text.
	FormatBase64 Format = "base64"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatBinary, FormatBase64:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// SealedHeader is the JSON metadata on the first line of an envelope.
// The exact header line bytes are the associated data of the body.
type SealedHeader struct {
	Version     string    `json:"version"`
	Algorithm   string    `json:"algorithm"`
	SegmentSize int       `json:"segment_size"`
	Format      Format    `json:"format"`
	KDF         KDFParams `json:"kdf"`
}

// KDFParams contains Argon2id parameters for key derivation
type KDFParams struct {
	Algorithm string `json:"algorithm"`
	Salt      string `json:"salt"`
	Time      uint32 `json:"time"`
	Memory    uint32 `json:"memory"`
	Threads   uint8  `json:"threads"`
	KeyLen    uint32 `json:"keylen"`
}

// WorkFactor is the tunable cost of the Argon2id derivation.
type WorkFactor struct {
	Time    uint32 // passes
	Memory  uint32 // KiB
	Threads uint8
}

// Params configures a Codec. Tests pass small values; production code
// starts from DefaultParams.
type Params struct {
	KDF         WorkFactor
	SegmentSize int
	Format      Format
}

// DefaultParams returns the work factor and segment size used for paper
// backups: Argon2id with 3 passes over 64 MiB, 4 KiB ciphertext segments.
func DefaultParams() Params {
	return Params{
		KDF: WorkFactor{
			Time:    3,
			Memory:  64 * 1024,
			Threads: Argon2Threads,
		},
		SegmentSize: DefaultSegmentSize,
		Format:      FormatBase64,
	}
}

// Validate checks that the parameters are accepted by the primitives.
func (p Params) Validate() error {
	if err := p.KDF.validate(); err != nil {
		return err
	}
	if p.SegmentSize < MinSegmentSize || p.SegmentSize > MaxSegmentSize {
		return fmt.Errorf("%w: segment size %d outside [%d, %d]",
			ErrInvalidParams, p.SegmentSize, MinSegmentSize, MaxSegmentSize)
	}
	if _, err := ParseFormat(string(p.Format)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func (w WorkFactor) validate() error {
	switch {
	case w.Time < 1:
		return fmt.Errorf("%w: argon2 time must be at least 1", ErrInvalidParams)
	case w.Threads < 1:
		return fmt.Errorf("%w: argon2 threads must be at least 1", ErrInvalidParams)
	case w.Time > MaxArgon2Time:
		return fmt.Errorf("%w: argon2 time %d exceeds %d", ErrInvalidParams, w.Time, MaxArgon2Time)
	case w.Memory < 8*uint32(w.Threads):
		return fmt.Errorf("%w: argon2 memory must be at least %d KiB", ErrInvalidParams, 8*uint32(w.Threads))
	case w.Memory > MaxArgon2Memory:
		return fmt.Errorf("%w: argon2 memory %d KiB exceeds %d KiB", ErrInvalidParams, w.Memory, MaxArgon2Memory)
	}
	return nil
}
