// Package secret holds passphrases and derived keys in buffers that are
// zeroed when the owning operation finishes.
//
// A Buffer owns its bytes. Whoever receives a *Buffer is responsible for
// calling Destroy, normally with defer right after acquisition:
//
//	key := secret.New(deriveKey(...))
//	defer key.Destroy()
//
// Destroy is idempotent, so consumers may destroy a buffer early (for
// example right after key derivation) while the caller's deferred Destroy
// still runs safely.
package secret

import "runtime"

// Buffer is a wipeable byte buffer for sensitive material.
type Buffer struct {
	b []byte
}

// New takes ownership of b. The caller must not use b afterwards.
func New(b []byte) *Buffer {
	return &Buffer{b: b}
}

// FromString copies s into a new Buffer. The string itself cannot be wiped.
func FromString(s string) *Buffer {
	b := make([]byte, len(s))
	copy(b, s)
	return &Buffer{b: b}
}

// Bytes returns the underlying bytes, or nil after Destroy.
func (s *Buffer) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len returns the number of bytes held.
func (s *Buffer) Len() int {
	return len(s.Bytes())
}

// Destroyed reports whether Destroy has been called.
func (s *Buffer) Destroyed() bool {
	return s == nil || s.b == nil
}

// Destroy zeroes the buffer and releases it.
func (s *Buffer) Destroy() {
	if s == nil || s.b == nil {
		return
	}
	Wipe(s.b)
	s.b = nil
}

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
