package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"
)

// PassphraseEnvVar supplies the passphrase non-interactively.
const PassphraseEnvVar = "GENPASS_PASSPHRASE"

// passphraseSource resolves the passphrase: inline flag first, then the
// environment, then the terminal.
type passphraseSource struct {
	inline   string
	getenv   func(string) string
	readPass func(prompt string) ([]byte, error)
}

func newPassphraseSource(inline string, prompts io.Writer) *passphraseSource {
	return &passphraseSource{
		inline: inline,
		getenv: os.Getenv,
		readPass: func(prompt string) ([]byte, error) {
			return readPassword(prompts, prompt)
		},
	}
}

func (s *passphraseSource) get(prompt string) ([]byte, error) {
	if s.inline != "" {
		return []byte(s.inline), nil
	}
	if envPass := s.getenv(PassphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}
	return s.readPass(prompt)
}

func (s *passphraseSource) getWithConfirm(prompt, confirmPrompt string) ([]byte, error) {
	if s.inline != "" || s.getenv(PassphraseEnvVar) != "" {
		return s.get(prompt)
	}

	passphrase, err := s.readPass(prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := s.readPass(confirmPrompt)
	if err != nil {
		wipe(passphrase)
		return nil, err
	}
	defer wipe(confirm)

	if !bytes.Equal(passphrase, confirm) {
		wipe(passphrase)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

// readKeyfile returns the keyfile contents, or nil when no path is set.
func readKeyfile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Kind: KindFileReadFailed, Op: "read keyfile", Path: path, Err: err}
	}
	return data, nil
}

func readPassword(prompts io.Writer, prompt string) ([]byte, error) {
	fmt.Fprint(prompts, prompt)

	var passphrase []byte
	var err error

	if term.IsTerminal(int(syscall.Stdin)) {
		passphrase, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(prompts)
	} else {
		// STDIN is piped, fall back to the controlling terminal
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("passphrase must be set via %s environment variable when STDIN is piped", PassphraseEnvVar)
			}
			return nil, fmt.Errorf("cannot read passphrase: STDIN is piped and /dev/tty is not available. Set %s environment variable", PassphraseEnvVar)
		}
		defer tty.Close()

		passphrase, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(prompts)
	}

	if err != nil {
		return nil, err
	}
	return passphrase, nil
}
