package main

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// DerivedKeyLen is the scrypt output size: an encryption half followed by an
// authentication half.
const DerivedKeyLen = 64

// kdfFunc has the signature of scrypt.Key.
type kdfFunc func(password, salt []byte, N, r, p, keyLen int) ([]byte, error)

// Derive runs scrypt over secret and salt. The returned key is owned by the
// caller, who must Destroy it.
func Derive(secret, salt []byte, params CostParams, keyLen int) (*Secret, error) {
	return deriveWith(scrypt.Key, secret, salt, params, keyLen)
}

func deriveWith(kdf kdfFunc, secret, salt []byte, params CostParams, keyLen int) (*Secret, error) {
	const op = "derive key"

	if params.LogN < 1 || params.LogN > maxLogN || params.R == 0 || params.P == 0 {
		return nil, &Error{Kind: KindInvalidParameters, Op: op, Err: fmt.Errorf("%s out of range", params)}
	}
	if uint64(params.R)*uint64(params.P) >= rpLimit {
		return nil, &Error{Kind: KindInvalidParameters, Op: op, Err: fmt.Errorf("r*p must be below 2^30")}
	}
	if keyLen <= 0 {
		return nil, &Error{Kind: KindInvalidParameters, Op: op, Err: fmt.Errorf("key length %d", keyLen)}
	}
	// N must fit an int before scrypt sees it.
	if params.N() > math.MaxInt/128/uint64(params.R) {
		return nil, &Error{Kind: KindAllocationFailed, Op: op, Need: params.Memory()}
	}

	dk, err := kdf(secret, salt, int(params.N()), int(params.R), int(params.P), keyLen)
	if err != nil {
		wipe(dk)
		if strings.Contains(err.Error(), "too large") {
			return nil, &Error{Kind: KindAllocationFailed, Op: op, Need: params.Memory(), Err: err}
		}
		return nil, newError(KindDerivationFailed, op, err)
	}
	if len(dk) != keyLen {
		wipe(dk)
		return nil, newError(KindDerivationFailed, op, fmt.Errorf("got %d bytes, want %d", len(dk), keyLen))
	}
	return TakeSecret(dk), nil
}
