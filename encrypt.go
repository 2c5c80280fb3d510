package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"paperseal/internal/config"
	"paperseal/internal/document"
	"paperseal/internal/page"
	"paperseal/internal/paper"
)

// runSeal reads the secret, asks for a passphrase and writes the PDF.
func runSeal(cmd *cobra.Command, opts *sealOptions, cfg *config.Config, input string, logger hclog.Logger) error {
	size, err := page.Parse(cfg.PageSize)
	if err != nil {
		return err
	}
	// Check the page text before prompting so a typo never costs a passphrase entry.
	if _, err := document.New(opts.title, size); err != nil {
		return err
	}
	if !cfg.SkipNotesLine {
		if err := document.ValidateText(cfg.NotesLabel); err != nil {
			return fmt.Errorf("notes label: %w", err)
		}
	}
	if err := checkOutput(opts.output, opts.force); err != nil {
		return err
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}
	level, err := cfg.QRLevel()
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, input)
	if err != nil {
		return err
	}
	defer closeIn()

	passphrase, err := getPassphraseWithConfirm("Enter passphrase: ", "Confirm passphrase: ")
	if err != nil {
		return err
	}

	logger.Debug("sealing secret", "page", size.String(), "level", level.String(),
		"memory_kib", params.KDF.Memory, "time", params.KDF.Time, "format", string(params.Format))

	stop := startSpinner(cmd.ErrOrStderr(), "Deriving key and rendering PDF...", logger)
	pdf, err := paper.CreatePDF(opts.title, bufio.NewReader(in), passphrase, paper.Options{
		NotesLabel:    cfg.NotesLabel,
		SkipNotesLine: cfg.SkipNotesLine,
		PageSize:      cfg.PageSize,
		Grid:          cfg.Grid,
		Level:         level,
		MinModuleSize: cfg.MinModuleSize,
		Params:        params,
		Logger:        logger,
	})
	stop()
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, opts.output, opts.force, pdf); err != nil {
		return err
	}
	if opts.output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Wrote %s %s\n", successStyle.Sprint("✓"),
			highlightStyle.Sprint(opts.output), mutedStyle.Sprintf("(%s, level %s)", size, level))
	}
	return nil
}

func openInput(cmd *cobra.Command, input string) (io.Reader, func(), error) {
	if input == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// checkOutput fails early when the output exists and may not be replaced.
func checkOutput(path string, force bool) error {
	if path == "-" || force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check output: %w", err)
	}
	return nil
}

func writeOutput(cmd *cobra.Command, path string, force bool, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("failed to create output: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}
