package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	macsubtle "github.com/tink-crypto/tink-go/v2/mac/subtle"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	streamingKeyTypeURL = "type.googleapis.com/google.crypto.tink.AesGcmHkdfStreamingKey"

	segmentSize    = 1 << 20 // 1MB
	streamKeySize  = 32      // AES-256
	hkdfHashSHA256 = 3
	headerMACSize  = 32
)

// splitKey returns the encryption and authentication halves of a derived key.
func splitKey(dk []byte) (encKey, authKey []byte) {
	half := len(dk) / 2
	return dk[:half], dk[half:]
}

type jsonKeyData struct {
	TypeURL         string `json:"typeUrl"`
	KeyMaterialType string `json:"keyMaterialType"`
	Value           string `json:"value"`
}

type jsonKey struct {
	KeyData          jsonKeyData `json:"keyData"`
	OutputPrefixType string      `json:"outputPrefixType"`
	KeyID            uint32      `json:"keyId"`
	Status           string      `json:"status"`
}

type jsonKeyset struct {
	PrimaryKeyID uint32    `json:"primaryKeyId"`
	Key          []jsonKey `json:"key"`
}

// streamingKeyset wraps the encryption half in a single-key Tink keyset for
// AES-GCM-HKDF streaming.
func streamingKeyset(encKey []byte) (*keyset.Handle, error) {
	value := streamingKeyValue(encKey)
	defer wipe(value)

	ks := jsonKeyset{
		PrimaryKeyID: 1,
		Key: []jsonKey{{
			KeyData: jsonKeyData{
				TypeURL:         streamingKeyTypeURL,
				KeyMaterialType: "SYMMETRIC",
				Value:           base64.StdEncoding.EncodeToString(value),
			},
			OutputPrefixType: "RAW",
			KeyID:            1,
			Status:           "ENABLED",
		}},
	}
	raw, err := json.Marshal(ks)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keyset: %w", err)
	}
	defer wipe(raw)

	return insecurecleartextkeyset.Read(keyset.NewJSONReader(bytes.NewReader(raw)))
}

// streamingKeyValue encodes an AesGcmHkdfStreamingKey proto:
// version=0, params{segment size, derived key size, hkdf hash}, key_value.
func streamingKeyValue(key []byte) []byte {
	var params []byte
	params = protowire.AppendTag(params, 1, protowire.VarintType)
	params = protowire.AppendVarint(params, segmentSize)
	params = protowire.AppendTag(params, 2, protowire.VarintType)
	params = protowire.AppendVarint(params, streamKeySize)
	params = protowire.AppendTag(params, 3, protowire.VarintType)
	params = protowire.AppendVarint(params, hkdfHashSHA256)

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 0)
	msg = protowire.AppendTag(msg, 2, protowire.BytesType)
	msg = protowire.AppendBytes(msg, params)
	msg = protowire.AppendTag(msg, 3, protowire.BytesType)
	msg = protowire.AppendBytes(msg, key)
	return msg
}

// headerMACInput is the canonical header encoding the MAC covers.
func headerMACInput(h SealedHeader) ([]byte, error) {
	h.MAC = ""
	return json.Marshal(h)
}

func computeHeaderMAC(authKey []byte, h SealedHeader) (string, error) {
	data, err := headerMACInput(h)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}
	mac, err := macsubtle.NewHMAC("SHA256", authKey, headerMACSize)
	if err != nil {
		return "", fmt.Errorf("failed to create header MAC: %w", err)
	}
	tag, err := mac.ComputeMAC(data)
	if err != nil {
		return "", fmt.Errorf("failed to compute header MAC: %w", err)
	}
	return base64.StdEncoding.EncodeToString(tag), nil
}

// verifyHeaderMAC fails with IncorrectPassphrase when the tag does not match,
// which is how a wrong passphrase shows up.
func verifyHeaderMAC(authKey []byte, h SealedHeader) error {
	tag, err := base64.StdEncoding.DecodeString(h.MAC)
	if err != nil {
		return newError(KindInvalidFormat, "verify header", fmt.Errorf("invalid mac encoding: %w", err))
	}
	data, err := headerMACInput(h)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	mac, err := macsubtle.NewHMAC("SHA256", authKey, headerMACSize)
	if err != nil {
		return fmt.Errorf("failed to create header MAC: %w", err)
	}
	if err := mac.VerifyMAC(tag, data); err != nil {
		return newError(KindIncorrectPassphrase, "verify header", nil)
	}
	return nil
}
