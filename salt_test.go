package main

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readStep struct {
	n   int
	err error
}

// scriptedReader serves bytes from src in the chunk sizes and with the
// errors given by steps.
type scriptedReader struct {
	src   []byte
	steps []readStep
	calls int
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.calls >= len(r.steps) {
		return 0, io.EOF
	}
	step := r.steps[r.calls]
	r.calls++
	n := min(step.n, len(p), len(r.src))
	copy(p, r.src[:n])
	r.src = r.src[n:]
	return n, step.err
}

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i + 1)
	}
	return b
}

func TestRandomSalt_Chunked(t *testing.T) {
	src := sequence(SaltLen)
	r := &scriptedReader{src: src, steps: []readStep{{5, nil}, {5, nil}, {30, nil}}}

	salt, err := RandomSalt(r)
	require.NoError(t, err)
	assert.Equal(t, src, salt[:])
	assert.Equal(t, 3, r.calls)
}

func TestRandomSalt_ResumesAfterInterrupt(t *testing.T) {
	src := sequence(SaltLen)
	r := &scriptedReader{src: src, steps: []readStep{
		{10, syscall.EINTR},
		{0, syscall.EINTR},
		{SaltLen, nil},
	}}

	salt, err := RandomSalt(r)
	require.NoError(t, err)
	assert.Equal(t, src, salt[:], "read must continue at the interrupted offset")
}

func TestRandomSalt_Errors(t *testing.T) {
	tests := []struct {
		name    string
		steps   []readStep
		wantErr error
	}{
		{"eof before full", []readStep{{10, nil}, {0, io.EOF}}, ErrEntropySourceExhausted},
		{"short read with eof", []readStep{{10, io.EOF}}, ErrEntropySourceExhausted},
		{"zero read", []readStep{{0, nil}}, ErrEntropySourceExhausted},
		{"device error", []readStep{{4, errors.New("device gone")}}, ErrEntropySourceUnavailable},
		{"permission", []readStep{{0, syscall.EACCES}}, ErrEntropySourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &scriptedReader{src: sequence(SaltLen), steps: tt.steps}
			_, err := RandomSalt(r)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRandomSalt_Default(t *testing.T) {
	a, err := RandomSalt(nil)
	require.NoError(t, err)
	b, err := RandomSalt(nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.False(t, bytes.Equal(a[:], make([]byte, SaltLen)))
}

func TestSiteSalt(t *testing.T) {
	want := sha256.Sum256([]byte("genpass/site-salt/v1\x00example.com"))
	assert.Equal(t, want, SiteSalt("example.com"))
	assert.Equal(t, SiteSalt("example.com"), SiteSalt("example.com"))
	assert.NotEqual(t, SiteSalt("example.com"), SiteSalt("example.org"))
	assert.NotEqual(t, sha256.Sum256([]byte("example.com")), SiteSalt("example.com"))
}
