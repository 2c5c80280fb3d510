package envelope

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"paperseal/internal/secret"
)

// Codec seals plaintext into envelopes with a fixed set of parameters.
type Codec struct {
	params Params
}

// NewCodec validates p and returns a Codec using it.
func NewCodec(p Params) (*Codec, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Codec{params: p}, nil
}

// Params returns the parameters the codec was built with.
func (c *Codec) Params() Params {
	return c.params
}

// Encrypt reads r to exhaustion and seals it under passphrase. It returns
// the number of plaintext bytes read and the envelope.
//
// The passphrase is consumed: it is destroyed as soon as the key has been
// derived, and on every error path.
func (c *Codec) Encrypt(r io.Reader, passphrase *secret.Buffer) (int, []byte, error) {
	defer passphrase.Destroy()

	// Generate random salt
	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return 0, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	headerLine, err := json.Marshal(c.header(salt))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal header: %w", err)
	}

	key := deriveKey(passphrase.Bytes(), salt, c.params.KDF)
	passphrase.Destroy()
	defer key.Destroy()

	cipher, err := newStreamCipher(key, c.params.SegmentSize)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create streaming AEAD: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(headerLine)
	buf.WriteByte('\n')

	var outputWriter io.WriteCloser
	if c.params.Format == FormatBase64 {
		outputWriter = base64.NewEncoder(base64.StdEncoding, &buf)
	} else {
		outputWriter = &nopCloser{&buf}
	}

	// The header line is the associated data, so the header is authenticated
	// together with every segment.
	encWriter, err := cipher.NewEncryptingWriter(outputWriter, headerLine)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create encrypting writer: %w", err)
	}

	copyBuf := make([]byte, 32*1024)
	defer secret.Wipe(copyBuf)

	n, err := io.CopyBuffer(encWriter, r, copyBuf)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read plaintext: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return 0, nil, fmt.Errorf("failed to finalize encryption: %w", err)
	}

	if err := outputWriter.Close(); err != nil {
		return 0, nil, fmt.Errorf("failed to finalize output: %w", err)
	}

	return int(n), buf.Bytes(), nil
}

// SealedSize returns the exact envelope length Encrypt produces for a
// plaintext of n bytes.
func (c *Codec) SealedSize(n int) int {
	return c.headerLineLen() + 1 + c.bodySize(n)
}

// MaxPlaintext returns the largest plaintext length whose envelope fits in
// capacity bytes, or -1 if not even an empty plaintext fits.
func (c *Codec) MaxPlaintext(capacity int) int {
	overhead := c.headerLineLen() + 1
	if overhead+c.bodySize(0) > capacity {
		return -1
	}
	// SealedSize(capacity) > capacity, so the search always terminates inside the range.
	return sort.Search(capacity+1, func(n int) bool {
		return overhead+c.bodySize(n) > capacity
	}) - 1
}

func (c *Codec) bodySize(n int) int {
	size := streamHeaderLen + n + segmentTagLen*c.segments(n)
	if c.params.Format == FormatBase64 {
		size = base64.StdEncoding.EncodedLen(size)
	}
	return size
}

// segments counts ciphertext segments for n plaintext bytes. The first
// segment also carries the stream header; a full trailing segment is the
// last one, never followed by an empty segment.
func (c *Codec) segments(n int) int {
	first := c.params.SegmentSize - streamHeaderLen - segmentTagLen
	if n <= first {
		return 1
	}
	rest := c.params.SegmentSize - segmentTagLen
	return 1 + (n-first+rest-1)/rest
}

func (c *Codec) headerLineLen() int {
	line, err := json.Marshal(c.header(make([]byte, SaltLen)))
	if err != nil {
		return 0
	}
	return len(line)
}

func (c *Codec) header(salt []byte) SealedHeader {
	return SealedHeader{
		Version:     Version,
		Algorithm:   Algorithm,
		SegmentSize: c.params.SegmentSize,
		Format:      c.params.Format,
		KDF: KDFParams{
			Algorithm: KDFAlgorithm,
			Salt:      base64.StdEncoding.EncodeToString(salt),
			Time:      c.params.KDF.Time,
			Memory:    c.params.KDF.Memory,
			Threads:   c.params.KDF.Threads,
			KeyLen:    Argon2KeyLen,
		},
	}
}

// nopCloser wraps a Writer to provide a no-op Close method
type nopCloser struct {
	io.Writer
}

func (n *nopCloser) Close() error {
	return nil
}
