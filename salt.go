package main

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"syscall"
)

const (
	SaltLen = 32

	// siteSaltTag separates site salts from any other use of SHA-256 over
	// the site name.
	siteSaltTag = "genpass/site-salt/v1\x00"
)

// RandomSalt fills a salt from r, or from crypto/rand when r is nil. An
// interrupted read resumes where it stopped; end of data is a failure since
// a random source must never run dry.
func RandomSalt(r io.Reader) ([SaltLen]byte, error) {
	const op = "read salt"
	var salt [SaltLen]byte

	if r == nil {
		r = rand.Reader
	}

	buf := salt[:]
	for len(buf) > 0 {
		n, err := r.Read(buf)
		buf = buf[n:]
		if len(buf) == 0 {
			break
		}
		switch {
		case err == nil && n > 0:
			continue
		case errors.Is(err, syscall.EINTR):
			continue
		case err == nil, errors.Is(err, io.EOF):
			return salt, newError(KindEntropySourceExhausted, op, err)
		default:
			return salt, newError(KindEntropySourceUnavailable, op, err)
		}
	}
	return salt, nil
}

// SiteSalt derives the salt for a site, so a passphrase regenerates the same
// password for the same site.
func SiteSalt(site string) [SaltLen]byte {
	h := sha256.New()
	h.Write([]byte(siteSaltTag))
	h.Write([]byte(site))
	var salt [SaltLen]byte
	copy(salt[:], h.Sum(nil))
	return salt
}
