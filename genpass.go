package main

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/scrypt"
)

// Credential is the secret input of one generation. Generate consumes it:
// Passphrase and Keyfile are zeroed before Generate returns.
type Credential struct {
	Passphrase []byte
	Keyfile    []byte
	Site       string
}

func (c *Credential) wipe() {
	wipe(c.Passphrase)
	wipe(c.Keyfile)
}

// Generator runs the derivation pipeline under a fixed budget.
type Generator struct {
	Budget ResourceBudget
	Logger *slog.Logger

	kdf kdfFunc
}

func NewGenerator(budget ResourceBudget, logger *slog.Logger) *Generator {
	return &Generator{Budget: budget, Logger: logger, kdf: scrypt.Key}
}

// Generate derives the site password for c. The returned Secret belongs to
// the caller.
func (g *Generator) Generate(c Credential, policy OutputPolicy) (*Secret, error) {
	defer c.wipe()

	if err := policy.check(DerivedKeyLen); err != nil {
		return nil, err
	}

	secret := ConcatSecret(c.Passphrase, c.Keyfile)
	defer secret.Destroy()
	c.wipe()

	params := SelectParams(g.Budget)
	g.logger().Debug("selected scrypt parameters",
		"log_n", params.LogN,
		"r", params.R,
		"p", params.P,
		"memory", uint64(params.Memory()),
		"max_memory", g.Budget.MaxMemory,
		"max_megaops", g.Budget.MaxMegaOps,
	)

	salt := SiteSalt(c.Site)
	kdf := g.kdf
	if kdf == nil {
		kdf = scrypt.Key
	}
	dk, err := deriveWith(kdf, secret.Bytes(), salt[:], params, DerivedKeyLen)
	if err != nil {
		return nil, err
	}
	defer dk.Destroy()

	return renderSecret(dk.Bytes(), policy)
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// Fingerprint is a short display digest of a secret, letting a user notice a
// mistyped passphrase without revealing it.
func Fingerprint(secret []byte) string {
	sum := sha256.Sum256(secret)
	defer wipe(sum[:])
	return hex.EncodeToString(sum[:8])
}
