package main

import (
	"fmt"
	"strings"
)

// ErrorKind identifies a failure class of the derivation pipeline and the
// seal/open flow.
type ErrorKind int

const (
	KindResourceDetectionFailed ErrorKind = iota + 1
	KindEntropySourceUnavailable
	KindEntropySourceExhausted
	KindDerivationFailed
	KindAllocationFailed
	KindInvalidParameters
	KindMemoryBudgetExceeded
	KindTimeBudgetExceeded
	KindIncorrectPassphrase
	KindFileReadFailed
	KindFileWriteFailed
	KindInvalidOutputLength
	KindInvalidFormat
)

var kindMessages = map[ErrorKind]string{
	KindResourceDetectionFailed:  "error determining amount of available memory",
	KindEntropySourceUnavailable: "error reading salt",
	KindEntropySourceExhausted:   "entropy source returned end of data",
	KindDerivationFailed:         "error computing derived key",
	KindAllocationFailed:         "error allocating memory",
	KindInvalidParameters:        "invalid scrypt parameters",
	KindMemoryBudgetExceeded:     "derivation would require too much memory",
	KindTimeBudgetExceeded:       "derivation would take too much CPU time",
	KindIncorrectPassphrase:      "passphrase is incorrect",
	KindFileReadFailed:           "error reading file",
	KindFileWriteFailed:          "error writing file",
	KindInvalidOutputLength:      "invalid output length",
	KindInvalidFormat:            "input is not a valid sealed file",
}

func (k ErrorKind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Error is the error type returned by every core operation. Limit and Need
// are set for budget and range failures; Path is set for file failures.
type Error struct {
	Kind  ErrorKind
	Op    string
	Path  string
	Limit float64
	Need  float64
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Need != 0 || e.Limit != 0 {
		fmt.Fprintf(&b, " (need %.0f, limit %.0f)", e.Need, e.Limit)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so errors.Is(err, ErrTimeBudgetExceeded) matches
// any *Error of that kind regardless of its context fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrResourceDetectionFailed  = &Error{Kind: KindResourceDetectionFailed}
	ErrEntropySourceUnavailable = &Error{Kind: KindEntropySourceUnavailable}
	ErrEntropySourceExhausted   = &Error{Kind: KindEntropySourceExhausted}
	ErrDerivationFailed         = &Error{Kind: KindDerivationFailed}
	ErrAllocationFailed         = &Error{Kind: KindAllocationFailed}
	ErrInvalidParameters        = &Error{Kind: KindInvalidParameters}
	ErrMemoryBudgetExceeded     = &Error{Kind: KindMemoryBudgetExceeded}
	ErrTimeBudgetExceeded       = &Error{Kind: KindTimeBudgetExceeded}
	ErrIncorrectPassphrase      = &Error{Kind: KindIncorrectPassphrase}
	ErrFileReadFailed           = &Error{Kind: KindFileReadFailed}
	ErrFileWriteFailed          = &Error{Kind: KindFileWriteFailed}
	ErrInvalidOutputLength      = &Error{Kind: KindInvalidOutputLength}
	ErrInvalidFormat            = &Error{Kind: KindInvalidFormat}
)

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
