package main

const (
	sealAlgorithm = "AES256-GCM-HKDF-1MB"
	kdfAlgorithm  = "scrypt"

	formatBinary = "binary"
	formatBase64 = "base64"
)

// SealedHeader is the JSON first line of a sealed file. MAC covers the
// header with MAC left empty.
type SealedHeader struct {
	Version   string    `json:"version"`
	Algorithm string    `json:"algorithm"`
	Format    string    `json:"format"` // "binary" or "base64"
	KDF       KDFParams `json:"kdf"`
	MAC       string    `json:"mac,omitempty"`
}

// KDFParams records the scrypt salt and cost used to seal a file.
type KDFParams struct {
	Algorithm string `json:"algorithm"`
	Salt      string `json:"salt"`
	LogN      int    `json:"log_n"`
	R         uint32 `json:"r"`
	P         uint32 `json:"p"`
}

func (k KDFParams) cost() CostParams {
	return CostParams{LogN: k.LogN, R: k.R, P: k.P}
}

// SealOptions holds seal and open settings.
type SealOptions struct {
	UseBase64 bool
	Budget    ResourceBudget
}
