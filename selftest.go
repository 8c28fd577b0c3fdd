package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

type selfTestVector struct {
	name string
	run  func() ([]byte, error)
	want string
}

var selfTestVectors = []selfTestVector{
	{
		name: "SHA-256(\"abc\")",
		run: func() ([]byte, error) {
			sum := sha256.Sum256([]byte("abc"))
			return sum[:], nil
		},
		want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	},
	{
		name: "scrypt(\"\", \"\", 16, 1, 1)",
		run: func() ([]byte, error) {
			return scrypt.Key(nil, nil, 16, 1, 1, 64)
		},
		want: "77d6576238657b203b19ca42c18a0497f16b4844e3074ae8dfdffa3fede21442fcd0069ded0948f8326a753a0fc81f17e8d3e0fb2e0d3628cf35e20c38d18906",
	},
	{
		name: "scrypt(\"password\", \"NaCl\", 1024, 8, 16)",
		run: func() ([]byte, error) {
			return scrypt.Key([]byte("password"), []byte("NaCl"), 1024, 8, 16, 64)
		},
		want: "fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b3731622eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640",
	},
	{
		name: "render(zero key, 8)",
		run: func() ([]byte, error) {
			s, err := Render(make([]byte, DerivedKeyLen), OutputPolicy{Length: 8})
			return []byte(s), err
		},
		want: hex.EncodeToString([]byte("a0Aaaaaa")),
	},
}

// selfTest checks the hash, KDF and renderer against known answers and
// writes one line per vector to w.
func selfTest(w io.Writer) error {
	failed := 0
	for _, v := range selfTestVectors {
		got, err := v.run()
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", v.name, err)
			failed++
			continue
		}
		if hex.EncodeToString(got) != v.want {
			fmt.Fprintf(w, "FAIL %s: got %x\n", v.name, got)
			failed++
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", v.name)
	}
	if failed > 0 {
		return fmt.Errorf("self-test: %d of %d vectors failed", failed, len(selfTestVectors))
	}
	return nil
}
