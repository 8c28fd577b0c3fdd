package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/tink-crypto/tink-go/v2/streamingaead"
)

// open decrypts a sealed stream. The header's scrypt parameters must fit
// opts.Budget before any derivation is attempted.
func open(opts SealOptions, passphrase []byte, in io.Reader, out io.Writer, logger *slog.Logger) error {
	reader := bufio.NewReaderSize(in, segmentSize)
	headerLine, err := reader.ReadBytes('\n')
	if err != nil {
		return newError(KindInvalidFormat, "read header", err)
	}
	headerLine = bytes.TrimRight(headerLine, "\r\n")

	header, err := parseHeader(headerLine)
	if err != nil {
		return err
	}

	params := header.KDF.cost()
	if err := params.Check(opts.Budget); err != nil {
		return err
	}
	logger.Debug("opening with scrypt parameters", "log_n", params.LogN, "r", params.R, "p", params.P)

	salt, err := base64.StdEncoding.DecodeString(header.KDF.Salt)
	if err != nil {
		return newError(KindInvalidFormat, "decode salt", err)
	}

	if len(passphrase) == 0 {
		return fmt.Errorf("passphrase cannot be empty")
	}

	dk, err := Derive(passphrase, salt, params, DerivedKeyLen)
	if err != nil {
		return err
	}
	defer dk.Destroy()
	encKey, authKey := splitKey(dk.Bytes())

	if err := verifyHeaderMAC(authKey, header); err != nil {
		return err
	}

	keysetHandle, err := streamingKeyset(encKey)
	if err != nil {
		return fmt.Errorf("failed to create keyset: %w", err)
	}
	primitive, err := streamingaead.New(keysetHandle)
	if err != nil {
		return fmt.Errorf("failed to create streaming AEAD: %w", err)
	}

	var inputReader io.Reader = reader
	if header.Format == formatBase64 {
		inputReader = base64.NewDecoder(base64.StdEncoding, newNewlineTrimmingReader(reader))
	}

	decReader, err := primitive.NewDecryptingReader(inputReader, headerLine)
	if err != nil {
		return fmt.Errorf("failed to create decrypting reader: %w", err)
	}

	writer := bufio.NewWriterSize(out, segmentSize)
	if _, err := io.Copy(writer, decReader); err != nil {
		return fmt.Errorf("decryption failed (corrupted data?): %w", err)
	}
	if err := writer.Flush(); err != nil {
		return newError(KindFileWriteFailed, "flush output", err)
	}
	return nil
}

func parseHeader(line []byte) (SealedHeader, error) {
	const op = "parse header"
	var header SealedHeader

	if err := json.Unmarshal(line, &header); err != nil {
		return header, newError(KindInvalidFormat, op, err)
	}
	if header.Version == "" {
		return header, newError(KindInvalidFormat, op, fmt.Errorf("missing version"))
	}
	if header.Algorithm != sealAlgorithm {
		return header, newError(KindInvalidFormat, op, fmt.Errorf("unsupported algorithm: %s", header.Algorithm))
	}
	if header.KDF.Algorithm != kdfAlgorithm {
		return header, newError(KindInvalidFormat, op, fmt.Errorf("unsupported KDF: %s", header.KDF.Algorithm))
	}
	if header.Format != formatBinary && header.Format != formatBase64 {
		return header, newError(KindInvalidFormat, op, fmt.Errorf("unsupported format: %s", header.Format))
	}
	if header.MAC == "" {
		return header, newError(KindInvalidFormat, op, fmt.Errorf("missing mac"))
	}
	return header, nil
}

// newlineTrimmingReader drops line breaks from base64 input
type newlineTrimmingReader struct {
	r io.Reader
}

func newNewlineTrimmingReader(r io.Reader) *newlineTrimmingReader {
	return &newlineTrimmingReader{r: r}
}

func (t *newlineTrimmingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	w := 0
	for i := 0; i < n; i++ {
		if p[i] != '\n' && p[i] != '\r' {
			p[w] = p[i]
			w++
		}
	}
	return w, err
}
