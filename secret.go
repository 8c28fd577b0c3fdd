package main

import (
	"bytes"

	"github.com/awnumar/memguard"
)

// Secret owns a buffer of sensitive bytes. Destroy zeroes it; callers defer
// Destroy right after obtaining a Secret so every return path wipes it.
type Secret struct {
	buf []byte
}

// NewSecret allocates a zeroed secret of n bytes.
func NewSecret(n int) *Secret {
	return &Secret{buf: make([]byte, n)}
}

// TakeSecret adopts b. The caller must not use b afterwards except through
// the returned Secret.
func TakeSecret(b []byte) *Secret {
	return &Secret{buf: b}
}

// ConcatSecret copies the parts into a single new secret.
func ConcatSecret(parts ...[]byte) *Secret {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	s := NewSecret(n)
	off := 0
	for _, p := range parts {
		off += copy(s.buf[off:], p)
	}
	return s
}

func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.buf
}

func (s *Secret) Len() int {
	return len(s.Bytes())
}

// Equal compares contents without copying them out.
func (s *Secret) Equal(other *Secret) bool {
	return bytes.Equal(s.Bytes(), other.Bytes())
}

// Destroy zeroes the buffer. It is safe to call more than once and on nil.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	wipe(s.buf)
	s.buf = nil
}

func wipe(b []byte) {
	memguard.WipeBytes(b)
}
