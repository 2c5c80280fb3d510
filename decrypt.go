package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"paperseal/internal/envelope"
	"paperseal/internal/secret"
)

func newDecryptCmd(root *rootOptions) *cobra.Command {
	var (
		output  string
		force   bool
		inspect bool
	)

	cmd := &cobra.Command{
		Use:   "decrypt [FILE]",
		Short: "Recover a secret from a scanned envelope",
		Long: `Reads the text or bytes scanned from a paperseal QR code, from FILE or
stdin, and writes the secret to stdout. Nothing is written unless the whole
envelope authenticates.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup(cmd, root)
			if err != nil {
				return err
			}

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			in, closeIn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(in)
			closeIn()
			if err != nil {
				return fmt.Errorf("failed to read envelope: %w", err)
			}

			// Validate the header before asking for a passphrase
			header, err := envelope.Inspect(data)
			if err != nil {
				return err
			}
			logger.Debug("read envelope", "bytes", len(data), "format", string(header.Format),
				"memory_kib", header.KDF.Memory, "time", header.KDF.Time)

			if inspect {
				fmt.Fprintf(cmd.OutOrStdout(), "version:   %s\nalgorithm: %s\nsegment:   %d\nformat:    %s\nkdf:       %s t=%d m=%dKiB p=%d\n",
					header.Version, header.Algorithm, header.SegmentSize, header.Format,
					header.KDF.Algorithm, header.KDF.Time, header.KDF.Memory, header.KDF.Threads)
				return nil
			}

			if err := checkOutput(output, force); err != nil {
				return err
			}
			passphrase, err := getPassphrase("Enter passphrase: ")
			if err != nil {
				return err
			}

			stop := startSpinner(cmd.ErrOrStderr(), "Deriving key...", logger)
			plaintext, err := envelope.Decrypt(data, passphrase)
			stop()
			if err != nil {
				return err
			}
			defer secret.Wipe(plaintext)

			return writeOutput(cmd, output, force, plaintext)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "-", `output path, "-" for stdout`)
	f.BoolVarP(&force, "force", "f", false, "overwrite an existing output file")
	f.BoolVar(&inspect, "inspect", false, "print the envelope header without decrypting")

	return cmd
}
