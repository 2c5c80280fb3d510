package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"paperseal/internal/config"
	"paperseal/internal/logging"
)

const (
	Version = "1.0.0"

	// Environment variable for passphrase
	PassphraseEnvVar = "PAPERSEAL_PASSPHRASE"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

// sealOptions holds the flags of the root (sealing) command.
type sealOptions struct {
	title         string
	output        string
	force         bool
	pageSize      string
	notesLabel    string
	skipNotesLine bool
	grid          bool
	level         string
	format        string
	memory        string
	iterations    uint32
	minModuleSize float64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Sprint("Error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &rootOptions{}
	seal := &sealOptions{}

	cmd := &cobra.Command{
		Use:   "paperseal [INPUT]",
		Short: "Seal a secret into a printable, passphrase-encrypted QR code PDF",
		Long: `paperseal encrypts a secret under a passphrase and lays the result out as a
QR code on a single printable PDF page.

The secret is read from INPUT, or from stdin when INPUT is omitted or "-".
Recover it later by scanning the code and running 'paperseal decrypt'.

PASSPHRASE:
    Set PAPERSEAL_PASSPHRASE, or enter it interactively.`,
		Example: `  # Seal a recovery key onto an A4 page
  paperseal -t "Disk recovery key" recovery.txt -o recovery.pdf

  # Smaller page, stronger error correction
  echo -n "$TOKEN" | paperseal --page-size a5 -l H -o token.pdf`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, root)
			if err != nil {
				return err
			}
			if err := seal.apply(cmd.Flags(), cfg); err != nil {
				return err
			}
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return runSeal(cmd, seal, cfg, input, logger)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&root.configPath, "config", "", "YAML defaults file (env "+config.PathEnvVar+")")
	pf.StringVar(&root.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (env "+logging.LevelEnvVar+")")

	f := cmd.Flags()
	f.StringVarP(&seal.title, "title", "t", "", "title printed above the code")
	f.StringVarP(&seal.output, "output", "o", "out.pdf", `output PDF path, "-" for stdout`)
	f.BoolVarP(&seal.force, "force", "f", false, "overwrite an existing output file")
	f.StringVar(&seal.pageSize, "page-size", "", "page size: a4, letter, legal, a5 (default a4)")
	f.StringVar(&seal.notesLabel, "notes-label", "", `label of the handwritten notes line (default "Passphrase:")`)
	f.BoolVar(&seal.skipNotesLine, "skip-notes-line", false, "omit the notes line")
	f.BoolVarP(&seal.grid, "grid", "g", false, "draw a light alignment grid")
	f.StringVarP(&seal.level, "level", "l", "", "error correction level: L, M, Q, H (default M)")
	f.StringVar(&seal.format, "format", "", "ciphertext body format: base64, binary (default base64)")
	f.StringVarP(&seal.memory, "memory", "m", "", "Argon2 memory cost, e.g. 64M, 1G (default 64M)")
	f.Uint32VarP(&seal.iterations, "iterations", "i", 0, "Argon2 iterations (default 3)")
	f.Float64Var(&seal.minModuleSize, "min-module-size", 0, "smallest printable module edge in mm (default 0.5)")

	cmd.AddCommand(newDecryptCmd(root))
	cmd.AddCommand(newCapacityCmd(root))
	return cmd
}

// setup loads the configuration file, if any, and builds the logger.
func setup(cmd *cobra.Command, root *rootOptions) (*config.Config, hclog.Logger, error) {
	cfg := config.Default()
	path := root.configPath
	if path == "" {
		path = os.Getenv(config.PathEnvVar)
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	level := root.logLevel
	if level == "" {
		if env := os.Getenv(logging.LevelEnvVar); env != "" || cfg.LogLevel == "" {
			level = logging.GetLogLevel()
		} else {
			level = cfg.LogLevel
		}
	}
	if err := logging.ValidateLevel(level); err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger("paperseal", level, cmd.ErrOrStderr())
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	return cfg, logger, nil
}

// apply overrides cfg with every flag set on the command line.
func (o *sealOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("page-size") {
		cfg.PageSize = o.pageSize
	}
	if flags.Changed("notes-label") {
		cfg.NotesLabel = o.notesLabel
	}
	if flags.Changed("skip-notes-line") {
		cfg.SkipNotesLine = o.skipNotesLine
	}
	if flags.Changed("grid") {
		cfg.Grid = o.grid
	}
	if flags.Changed("level") {
		cfg.Level = o.level
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("memory") {
		cfg.KDF.Memory = o.memory
	}
	if flags.Changed("iterations") {
		if o.iterations < 1 {
			return fmt.Errorf("iterations must be at least 1")
		}
		cfg.KDF.Time = o.iterations
	}
	if flags.Changed("min-module-size") {
		if o.minModuleSize <= 0 {
			return fmt.Errorf("min-module-size must be positive, got %s",
				strconv.FormatFloat(o.minModuleSize, 'f', -1, 64))
		}
		cfg.MinModuleSize = o.minModuleSize
	}
	return cfg.Validate()
}
