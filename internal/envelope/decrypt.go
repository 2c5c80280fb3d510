package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"paperseal/internal/secret"
)

// Decrypt opens an envelope produced by Codec.Encrypt. Plaintext is only
// returned once every segment has authenticated; any failure matches
// ErrAuthentication.
//
// The passphrase is consumed like in Encrypt.
func Decrypt(data []byte, passphrase *secret.Buffer) ([]byte, error) {
	defer passphrase.Destroy()

	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}

	// Derive key using stored parameters
	key := deriveKey(passphrase.Bytes(), env.salt, env.workFactor())
	passphrase.Destroy()
	defer key.Destroy()

	cipher, err := newStreamCipher(key, env.header.SegmentSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	decReader, err := cipher.NewDecryptingReader(bytes.NewReader(env.body), env.headerLine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	// The plaintext is always shorter than the body, so a successful read
	// ends in EOF before the buffer fills.
	plaintext := make([]byte, len(env.body))
	n, err := io.ReadFull(decReader, plaintext)
	if err == nil || (!errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF)) {
		secret.Wipe(plaintext)
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted data", ErrAuthentication)
	}

	return plaintext[:n:n], nil
}

// Inspect parses and validates the envelope header without deriving a key.
func Inspect(data []byte) (*SealedHeader, error) {
	env, err := parseEnvelope(data)
	if err != nil {
		return nil, err
	}
	return &env.header, nil
}

type parsedEnvelope struct {
	header     SealedHeader
	headerLine []byte
	salt       []byte
	body       []byte
}

func (e *parsedEnvelope) workFactor() WorkFactor {
	return WorkFactor{
		Time:    e.header.KDF.Time,
		Memory:  e.header.KDF.Memory,
		Threads: e.header.KDF.Threads,
	}
}

func parseEnvelope(data []byte) (*parsedEnvelope, error) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, fmt.Errorf("%w: missing header line", ErrInvalidEnvelope)
	}

	// Tolerate CRLF from text tools; '\r' cannot appear in the compact header.
	env := &parsedEnvelope{
		headerLine: bytes.TrimSuffix(data[:i], []byte{'\r'}),
		body:       data[i+1:],
	}

	if err := json.Unmarshal(env.headerLine, &env.header); err != nil {
		return nil, fmt.Errorf("%w: failed to parse header: %v", ErrInvalidEnvelope, err)
	}

	salt, err := env.header.validate()
	if err != nil {
		return nil, err
	}
	env.salt = salt

	if env.header.Format == FormatBase64 {
		text := bytes.TrimRight(env.body, " \t\r\n")
		body, err := base64.StdEncoding.Strict().DecodeString(string(text))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid body encoding: %v", ErrInvalidEnvelope, err)
		}
		env.body = body
	}

	if len(env.body) < streamHeaderLen+segmentTagLen {
		return nil, fmt.Errorf("%w: body too short", ErrInvalidEnvelope)
	}

	return env, nil
}

// validate checks every header field before any key derivation and returns
// the decoded salt.
func (h *SealedHeader) validate() ([]byte, error) {
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidEnvelope, h.Version)
	}
	if h.Algorithm != Algorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidEnvelope, h.Algorithm)
	}
	if h.KDF.Algorithm != KDFAlgorithm {
		return nil, fmt.Errorf("%w: unsupported KDF %q", ErrInvalidEnvelope, h.KDF.Algorithm)
	}
	if _, err := ParseFormat(string(h.Format)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if h.KDF.KeyLen != Argon2KeyLen {
		return nil, fmt.Errorf("%w: unsupported key length %d", ErrInvalidEnvelope, h.KDF.KeyLen)
	}

	p := Params{
		KDF: WorkFactor{
			Time:    h.KDF.Time,
			Memory:  h.KDF.Memory,
			Threads: h.KDF.Threads,
		},
		SegmentSize: h.SegmentSize,
		Format:      h.Format,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}

	salt, err := base64.StdEncoding.Strict().DecodeString(h.KDF.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt encoding: %v", ErrInvalidEnvelope, err)
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("%w: salt must be %d bytes", ErrInvalidEnvelope, SaltLen)
	}
	return salt, nil
}
