package envelope

import (
	"github.com/tink-crypto/tink-go/v2/streamingaead/subtle"
	"golang.org/x/crypto/argon2"

	"paperseal/internal/secret"
)

const (
	// Argon2id fixed parameters
	Argon2Threads = 4
	Argon2KeyLen  = 32 // 256 bits for AES-256
	SaltLen       = 16

	// Upper bounds accepted from a header, so a forged envelope cannot
	// demand an unbounded derivation.
	MaxArgon2Time   = 64
	MaxArgon2Memory = 4 * 1024 * 1024 // 4 GiB in KiB

	DefaultSegmentSize = 4096
	MinSegmentSize     = 64
	MaxSegmentSize     = 1 << 20

	// Tink AES-GCM-HKDF layout: header byte, HKDF salt of key size, 7-byte
	// nonce prefix; every segment ends in a 16-byte GCM tag.
	streamHeaderLen = 1 + Argon2KeyLen + 7
	segmentTagLen   = 16

	hkdfHash = "SHA256"
)

// deriveKey derives an encryption key from a passphrase using Argon2id.
// The returned buffer belongs to the caller.
func deriveKey(passphrase, salt []byte, w WorkFactor) *secret.Buffer {
	return secret.New(argon2.IDKey(passphrase, salt, w.Time, w.Memory, w.Threads, Argon2KeyLen))
}

// newStreamCipher builds the segment-authenticated AES-GCM-HKDF primitive
// directly from the derived key. Each segment nonce carries the segment
// index and a last-segment flag, so reordering and truncation fail.
func newStreamCipher(key *secret.Buffer, segmentSize int) (*subtle.AESGCMHKDF, error) {
	return subtle.NewAESGCMHKDF(key.Bytes(), hkdfHash, Argon2KeyLen, segmentSize, 0)
}
