package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) newSealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seal [infile [outfile]]",
		Short: "Encrypt a file under a passphrase",
		Long: `seal encrypts infile (default STDIN) to outfile (default STDOUT). The
scrypt parameters are chosen from --maxmem and --megaops and stored in the
output header.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSealOpen(args, true)
		},
	}
	cmd.Flags().BoolVarP(&a.opts.useBase64, "base64", "b", false, "Base64 output (text-safe but 33% larger)")
	return cmd
}

func (a *app) newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [infile [outfile]]",
		Short: "Decrypt a sealed file",
		Long: `open decrypts infile (default STDIN) to outfile (default STDOUT). It refuses
files whose scrypt parameters exceed --maxmem or --megaops.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSealOpen(args, false)
		},
	}
}

func (a *app) runSealOpen(args []string, sealing bool) (err error) {
	budget, err := a.budget()
	if err != nil {
		return err
	}

	in := a.stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return &Error{Kind: KindFileReadFailed, Op: "open input", Path: args[0], Err: err}
		}
		defer f.Close()
		in = f
	}

	keyfile, err := readKeyfile(a.opts.keyfile)
	if err != nil {
		return err
	}
	defer wipe(keyfile)

	src := a.passphrases()
	var passphrase []byte
	if sealing {
		passphrase, err = src.getWithConfirm("Please enter passphrase: ", "Please confirm passphrase: ")
	} else {
		passphrase, err = src.get("Please enter passphrase: ")
	}
	if err != nil {
		return fmt.Errorf("failed to get passphrase: %w", err)
	}
	secret := ConcatSecret(passphrase, keyfile)
	wipe(passphrase)
	defer secret.Destroy()

	out := a.stdout
	if len(args) > 1 && args[1] != "-" {
		f, cerr := os.Create(args[1])
		if cerr != nil {
			return &Error{Kind: KindFileWriteFailed, Op: "create output", Path: args[1], Err: cerr}
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = &Error{Kind: KindFileWriteFailed, Op: "close output", Path: args[1], Err: cerr}
			}
			if err != nil {
				os.Remove(args[1])
			}
		}()
		out = f
	}

	opts := SealOptions{UseBase64: a.opts.useBase64, Budget: budget}
	if sealing {
		return seal(opts, secret.Bytes(), in, out, a.logger)
	}
	return open(opts, secret.Bytes(), in, out, a.logger)
}
