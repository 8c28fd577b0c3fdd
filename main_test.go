package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// testConfig writes a config with small budgets so scrypt runs fast.
func testConfig(t *testing.T, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxmem: 1M\nmegaops: 1\n"+extra), 0600))
	return path
}

func TestCLI_Generate(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "")
	cfg := testConfig(t, "")

	first := runCLI(t, "", "--config", cfg, "-p", "correct horse", "example.com")
	require.NoError(t, first.err)
	assert.Regexp(t, regexp.MustCompile(`^[a-z][0-9][A-Z][a-zA-Z0-9]{13}\n$`), first.stdout)
	assert.Contains(t, first.stderr, "Passphrase fingerprint: ")
	assert.NotContains(t, first.stderr, "correct horse")

	second := runCLI(t, "", "--config", cfg, "-p", "correct horse", "example.com")
	require.NoError(t, second.err)
	assert.Equal(t, first.stdout, second.stdout)

	other := runCLI(t, "", "--config", cfg, "-p", "correct horse", "example.org")
	require.NoError(t, other.err)
	assert.NotEqual(t, first.stdout, other.stdout)
}

func TestCLI_MatchesGenerator(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "")
	cfg := testConfig(t, "")

	res := runCLI(t, "", "--config", cfg, "-p", "correct horse", "-l", "24", "example.com")
	require.NoError(t, res.err)

	pw, err := NewGenerator(ResourceBudget{MaxMemory: 1000000, MaxMegaOps: 1}, nil).
		Generate(Credential{Passphrase: []byte("correct horse"), Site: "example.com"}, OutputPolicy{Length: 24})
	require.NoError(t, err)
	defer pw.Destroy()
	assert.Equal(t, string(pw.Bytes())+"\n", res.stdout)
}

func TestCLI_Options(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "")
	cfg := testConfig(t, "length: 10\n")

	res := runCLI(t, "", "--config", cfg, "-p", "correct horse", "example.com")
	require.NoError(t, res.err)
	assert.Len(t, strings.TrimSpace(res.stdout), 10, "length from config")

	res = runCLI(t, "", "--config", cfg, "-p", "correct horse", "-l", "6", "-n", "example.com")
	require.NoError(t, res.err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}\n$`), res.stdout, "flags override config")

	res = runCLI(t, "", "--config", cfg, "-p", "correct horse", "-l", "2", "example.com")
	assert.ErrorIs(t, res.err, ErrInvalidOutputLength)

	res = runCLI(t, "", "--config", cfg, "-p", "correct horse", "-l", "65", "example.com")
	assert.ErrorIs(t, res.err, ErrInvalidOutputLength)
}

func TestCLI_EnvPassphraseAndKeyfile(t *testing.T) {
	cfg := testConfig(t, "")

	t.Setenv(PassphraseEnvVar, "")
	inline := runCLI(t, "", "--config", cfg, "-p", "correct horse", "example.com")
	require.NoError(t, inline.err)

	t.Setenv(PassphraseEnvVar, "correct horse")
	env := runCLI(t, "", "--config", cfg, "example.com")
	require.NoError(t, env.err)
	assert.Equal(t, inline.stdout, env.stdout)

	keyfile := filepath.Join(t.TempDir(), "keyfile")
	require.NoError(t, os.WriteFile(keyfile, []byte("battery staple"), 0600))
	withKey := runCLI(t, "", "--config", cfg, "-k", keyfile, "example.com")
	require.NoError(t, withKey.err)
	assert.NotEqual(t, env.stdout, withKey.stdout)

	missing := runCLI(t, "", "--config", cfg, "-k", keyfile+".missing", "example.com")
	assert.ErrorIs(t, missing.err, ErrFileReadFailed)
}

func TestCLI_Usage(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "")
	cfg := testConfig(t, "")

	for _, args := range [][]string{
		{"--config", cfg, "-p", "x"},
		{"--config", cfg, "-p", "x", "a.com", "b.com"},
	} {
		res := runCLI(t, "", args...)
		assert.Error(t, res.err)
		assert.Contains(t, res.stdout+res.stderr, "Usage:")
		assert.Empty(t, strings.TrimSpace(strings.Split(res.stdout, "Usage:")[0]), "no password printed")
	}
}

func TestCLI_SelfTest(t *testing.T) {
	cfg := testConfig(t, "")
	res := runCLI(t, "", "--config", cfg, "-t")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ok   SHA-256(\"abc\")")
	assert.NotContains(t, res.stdout, "FAIL")
}

func TestCLI_MissingConfig(t *testing.T) {
	res := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "-p", "x", "example.com")
	assert.ErrorIs(t, res.err, ErrFileReadFailed)
}

func TestCLI_SealOpen(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "")
	cfg := testConfig(t, "")
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	sealed := filepath.Join(dir, "plain.sealed")
	opened := filepath.Join(dir, "plain.out")
	require.NoError(t, os.WriteFile(plain, []byte("attack at dawn\n"), 0600))

	res := runCLI(t, "", "seal", "--config", cfg, "-p", "correct horse", "-b", plain, sealed)
	require.NoError(t, res.err)

	res = runCLI(t, "", "open", "--config", cfg, "-p", "correct horse", sealed, opened)
	require.NoError(t, res.err)
	got, err := os.ReadFile(opened)
	require.NoError(t, err)
	assert.Equal(t, "attack at dawn\n", string(got))

	failed := filepath.Join(dir, "wrong.out")
	res = runCLI(t, "", "open", "--config", cfg, "-p", "wrong horse", sealed, failed)
	assert.ErrorIs(t, res.err, ErrIncorrectPassphrase)
	assert.NoFileExists(t, failed, "partial output is removed")

	res = runCLI(t, "", "seal", "--config", cfg, "-p", "correct horse", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, res.err, ErrFileReadFailed)
}

func TestCLI_SealOpenStdio(t *testing.T) {
	t.Setenv(PassphraseEnvVar, "correct horse")
	cfg := testConfig(t, "")

	sealed := runCLI(t, "secret data", "seal", "--config", cfg)
	require.NoError(t, sealed.err)

	opened := runCLI(t, sealed.stdout, "open", "--config", cfg)
	require.NoError(t, opened.err)
	assert.Equal(t, "secret data", opened.stdout)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, "genpass", &Error{Kind: KindIncorrectPassphrase})
	assert.Equal(t, "genpass: passphrase is incorrect\n", buf.String())
}
