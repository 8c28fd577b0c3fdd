package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tink-crypto/tink-go/v2/streamingaead"
)

// seal encrypts in to out under passphrase. The scrypt parameters are chosen
// from opts.Budget and recorded in the header so open can re-derive the key.
func seal(opts SealOptions, passphrase []byte, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if len(passphrase) == 0 {
		return fmt.Errorf("passphrase cannot be empty")
	}

	salt, err := RandomSalt(nil)
	if err != nil {
		return err
	}

	params := SelectParams(opts.Budget)
	logger.Debug("sealing with scrypt parameters", "log_n", params.LogN, "r", params.R, "p", params.P)

	dk, err := Derive(passphrase, salt[:], params, DerivedKeyLen)
	if err != nil {
		return err
	}
	defer dk.Destroy()
	encKey, authKey := splitKey(dk.Bytes())

	format := formatBinary
	if opts.UseBase64 {
		format = formatBase64
	}
	header := SealedHeader{
		Version:   Version,
		Algorithm: sealAlgorithm,
		Format:    format,
		KDF: KDFParams{
			Algorithm: kdfAlgorithm,
			Salt:      base64.StdEncoding.EncodeToString(salt[:]),
			LogN:      params.LogN,
			R:         params.R,
			P:         params.P,
		},
	}
	if header.MAC, err = computeHeaderMAC(authKey, header); err != nil {
		return err
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	keysetHandle, err := streamingKeyset(encKey)
	if err != nil {
		return fmt.Errorf("failed to create keyset: %w", err)
	}
	primitive, err := streamingaead.New(keysetHandle)
	if err != nil {
		return fmt.Errorf("failed to create streaming AEAD: %w", err)
	}

	outBuf := bufio.NewWriterSize(out, segmentSize)
	if _, err := outBuf.Write(append(headerBytes, '\n')); err != nil {
		return newError(KindFileWriteFailed, "write header", err)
	}

	var outputWriter io.WriteCloser = &nopCloser{outBuf}
	if opts.UseBase64 {
		outputWriter = base64.NewEncoder(base64.StdEncoding, outBuf)
	}

	// The header line is bound to the stream as associated data.
	encWriter, err := primitive.NewEncryptingWriter(outputWriter, headerBytes)
	if err != nil {
		return fmt.Errorf("failed to create encrypting writer: %w", err)
	}

	if _, err := io.Copy(encWriter, bufio.NewReaderSize(in, segmentSize)); err != nil {
		return fmt.Errorf("encryption failed: %w", err)
	}
	if err := encWriter.Close(); err != nil {
		return newError(KindFileWriteFailed, "finalize encryption", err)
	}
	if err := outputWriter.Close(); err != nil {
		return newError(KindFileWriteFailed, "finalize output", err)
	}
	if opts.UseBase64 {
		if err := outBuf.WriteByte('\n'); err != nil {
			return newError(KindFileWriteFailed, "write trailer", err)
		}
	}
	if err := outBuf.Flush(); err != nil {
		return newError(KindFileWriteFailed, "flush output", err)
	}
	return nil
}

// nopCloser wraps a Writer to provide a no-op Close method
type nopCloser struct {
	io.Writer
}

func (n *nopCloser) Close() error {
	return nil
}
