package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

// options holds parsed flags. Values not set on the command line are filled
// from the config file.
type options struct {
	configPath  string
	maxMem      string
	maxMemFrac  float64
	megaOps     int
	length      int
	numbersOnly bool
	keyfile     string
	password    string
	selfTest    bool
	verbose     bool
	useBase64   bool
}

type app struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	logger *slog.Logger
}

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	prog := filepath.Base(os.Args[0])
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		reportError(os.Stderr, prog, err)
		memguard.SafeExit(1)
	}
}

// reportError prints one diagnostic line prefixed with the program name.
func reportError(w io.Writer, prog string, err error) {
	fmt.Fprintf(w, "%s: %v\n", prog, err)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, getenv: os.Getenv}

	root := &cobra.Command{
		Use:   "genpass [flags] <site>",
		Short: "Derive a site password from a passphrase with scrypt",
		Long: `genpass derives a reproducible password for a site from a passphrase
(and optionally a keyfile) using scrypt. The same passphrase, site and
resource limits always give the same password.

The passphrase is taken from --password, the ` + PassphraseEnvVar + `
environment variable, or the terminal.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		Args:              a.checkArgs,
		RunE:              a.runGenerate,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.maxMem, "maxmem", "M", "0", "Memory limit, e.g. 512M or 1G; bare numbers are MB, 0 uses a fraction of RAM")
	pf.Float64VarP(&a.opts.maxMemFrac, "maxmemfrac", "m", DefaultMaxMemFrac, "Fraction of RAM to use when --maxmem is 0 (at most 0.5)")
	pf.IntVarP(&a.opts.megaOps, "megaops", "o", DefaultMegaOps, "CPU limit in millions of scrypt operations")
	pf.StringVarP(&a.opts.keyfile, "keyfile", "k", "", "File whose contents are appended to the passphrase")
	pf.StringVarP(&a.opts.password, "password", "p", "", "Passphrase (visible to other local users; prefer the terminal)")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "Log selected parameters")
	pf.StringVar(&a.opts.configPath, "config", "", "Config file (default: $"+ConfigEnvVar+" or the user config dir)")

	f := root.Flags()
	f.IntVarP(&a.opts.length, "length", "l", DefaultPasswordLen, fmt.Sprintf("Password length (%d-%d)", MinPasswordLen, MaxPasswordLen))
	f.BoolVarP(&a.opts.numbersOnly, "numbers", "n", false, "Digits only")
	f.BoolVarP(&a.opts.selfTest, "selftest", "t", false, "Check hash, KDF and renderer against known answers")

	root.AddCommand(a.newSealCmd(), a.newOpenCmd())
	return root
}

func (a *app) checkArgs(cmd *cobra.Command, args []string) error {
	if a.opts.selfTest && len(args) == 0 {
		return nil
	}
	if len(args) != 1 {
		cmd.Usage()
		return fmt.Errorf("expected exactly one site, got %d arguments", len(args))
	}
	return nil
}

// setup loads the config file under the flags and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if a.opts.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	path, required := a.opts.configPath, true
	if path == "" {
		path = a.getenv(ConfigEnvVar)
	}
	if path == "" {
		path, required = DefaultConfigPath(), false
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("maxmem") {
		a.opts.maxMem = cfg.MaxMem
	}
	if !flags.Changed("maxmemfrac") {
		a.opts.maxMemFrac = cfg.MaxMemFrac
	}
	if !flags.Changed("megaops") {
		a.opts.megaOps = cfg.MegaOps
	}
	if flags.Lookup("length") != nil && !flags.Changed("length") {
		a.opts.length = cfg.Length
	}
	if flags.Lookup("numbers") != nil && !flags.Changed("numbers") {
		a.opts.numbersOnly = cfg.NumbersOnly
	}
	return nil
}

func (a *app) budget() (ResourceBudget, error) {
	maxmem, err := parseMemory(a.opts.maxMem)
	if err != nil {
		return ResourceBudget{}, fmt.Errorf("invalid memory value: %w", err)
	}
	if a.opts.megaOps < 1 {
		return ResourceBudget{}, fmt.Errorf("megaops must be at least 1")
	}

	mem, err := memoryBudget(maxmem, a.opts.maxMemFrac)
	if err != nil {
		return ResourceBudget{}, err
	}
	if maxmem == 0 {
		a.logger.Warn("memory limit derived from host RAM; set --maxmem to get the same result on other machines", "maxmem", mem)
	}
	return ResourceBudget{MaxMemory: mem, MaxMegaOps: a.opts.megaOps}, nil
}

func (a *app) passphrases() *passphraseSource {
	src := newPassphraseSource(a.opts.password, a.stderr)
	src.getenv = a.getenv
	return src
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	if a.opts.selfTest {
		return selfTest(a.stdout)
	}

	policy := OutputPolicy{Length: a.opts.length, NumbersOnly: a.opts.numbersOnly}
	if err := policy.check(DerivedKeyLen); err != nil {
		return err
	}
	budget, err := a.budget()
	if err != nil {
		return err
	}

	keyfile, err := readKeyfile(a.opts.keyfile)
	if err != nil {
		return err
	}
	passphrase, err := a.passphrases().getWithConfirm("Please enter passphrase: ", "Please confirm passphrase: ")
	if err != nil {
		wipe(keyfile)
		return fmt.Errorf("failed to get passphrase: %w", err)
	}
	if len(passphrase) == 0 {
		wipe(keyfile)
		return fmt.Errorf("passphrase cannot be empty")
	}

	effective := ConcatSecret(passphrase, keyfile)
	fmt.Fprintf(a.stderr, "Passphrase fingerprint: %s\n", Fingerprint(effective.Bytes()))
	effective.Destroy()

	password, err := NewGenerator(budget, a.logger).Generate(Credential{
		Passphrase: passphrase,
		Keyfile:    keyfile,
		Site:       args[0],
	}, policy)
	if err != nil {
		return err
	}
	defer password.Destroy()

	line := ConcatSecret(password.Bytes(), []byte{'\n'})
	defer line.Destroy()
	if _, err := a.stdout.Write(line.Bytes()); err != nil {
		return newError(KindFileWriteFailed, "write password", err)
	}
	return nil
}
