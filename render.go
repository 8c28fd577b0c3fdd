package main

import "fmt"

const (
	MinPasswordLen     = 3
	MaxPasswordLen     = DerivedKeyLen
	DefaultPasswordLen = 16

	lowers   = "abcdefghijklmnopqrstuvwxyz"
	uppers   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numerals = "0123456789"
	allChars = lowers + uppers + numerals
)

// OutputPolicy selects the password alphabet and length.
type OutputPolicy struct {
	Length      int
	NumbersOnly bool
}

func (p OutputPolicy) check(keyLen int) error {
	if p.Length < MinPasswordLen || p.Length > MaxPasswordLen || p.Length > keyLen {
		return &Error{
			Kind:  KindInvalidOutputLength,
			Op:    "render",
			Limit: float64(min(MaxPasswordLen, keyLen)),
			Need:  float64(p.Length),
			Err:   fmt.Errorf("length must be between %d and %d", MinPasswordLen, MaxPasswordLen),
		}
	}
	return nil
}

// Render maps derived key bytes onto the policy's alphabet. Without
// NumbersOnly the first three characters are a lowercase letter, a digit and
// an uppercase letter, in that order.
func Render(dk []byte, p OutputPolicy) (string, error) {
	out, err := renderSecret(dk, p)
	if err != nil {
		return "", err
	}
	defer out.Destroy()
	return string(out.Bytes()), nil
}

func renderSecret(dk []byte, p OutputPolicy) (*Secret, error) {
	if err := p.check(len(dk)); err != nil {
		return nil, err
	}

	out := NewSecret(p.Length)
	buf := out.Bytes()
	if p.NumbersOnly {
		for i := range buf {
			buf[i] = numerals[int(dk[i])%len(numerals)]
		}
		return out, nil
	}

	buf[0] = lowers[int(dk[0])%len(lowers)]
	buf[1] = numerals[int(dk[1])%len(numerals)]
	buf[2] = uppers[int(dk[2])%len(uppers)]
	for i := 3; i < len(buf); i++ {
		buf[i] = allChars[int(dk[i])%len(allChars)]
	}
	return out, nil
}
