package main

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Vectors(t *testing.T) {
	zero := make([]byte, DerivedKeyLen)
	key := make([]byte, DerivedKeyLen)
	copy(key, []byte{27, 13, 255, 61, 62, 36, 52})

	tests := []struct {
		name   string
		key    []byte
		policy OutputPolicy
		want   string
	}{
		{"zero key", zero, OutputPolicy{Length: 8}, "a0Aaaaaa"},
		{"zero key digits", zero, OutputPolicy{Length: 8, NumbersOnly: true}, "00000000"},
		{"mixed key", key, OutputPolicy{Length: 7}, "b3V9aK0"},
		{"mixed key digits", key, OutputPolicy{Length: 7, NumbersOnly: true}, "7351262"},
		{"minimum length", key, OutputPolicy{Length: 3}, "b3V"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.key, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_InvalidLength(t *testing.T) {
	key := make([]byte, DerivedKeyLen)

	for _, length := range []int{-1, 0, 2, 65, 1000} {
		for _, numbers := range []bool{false, true} {
			_, err := Render(key, OutputPolicy{Length: length, NumbersOnly: numbers})
			assert.ErrorIs(t, err, ErrInvalidOutputLength, "length=%d numbers=%v", length, numbers)
		}
	}

	_, err := Render(make([]byte, 8), OutputPolicy{Length: 10})
	assert.ErrorIs(t, err, ErrInvalidOutputLength, "length beyond the key")
}

func TestRender_Policy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	mixed := regexp.MustCompile(`^[a-z][0-9][A-Z][a-zA-Z0-9]*$`)
	digits := regexp.MustCompile(`^[0-9]+$`)

	for i := 0; i < 200; i++ {
		key := make([]byte, DerivedKeyLen)
		rng.Read(key)
		length := MinPasswordLen + rng.Intn(MaxPasswordLen-MinPasswordLen+1)

		got, err := Render(key, OutputPolicy{Length: length})
		require.NoError(t, err)
		assert.Len(t, got, length)
		assert.Regexp(t, mixed, got)

		again, err := Render(key, OutputPolicy{Length: length})
		require.NoError(t, err)
		assert.Equal(t, got, again)

		num, err := Render(key, OutputPolicy{Length: length, NumbersOnly: true})
		require.NoError(t, err)
		assert.Len(t, num, length)
		assert.Regexp(t, digits, num)
	}
}

func TestRender_PrefixStable(t *testing.T) {
	key := make([]byte, DerivedKeyLen)
	for i := range key {
		key[i] = byte(i * 7)
	}

	long, err := Render(key, OutputPolicy{Length: MaxPasswordLen})
	require.NoError(t, err)
	short, err := Render(key, OutputPolicy{Length: 12})
	require.NoError(t, err)
	assert.Equal(t, long[:12], short)
}
