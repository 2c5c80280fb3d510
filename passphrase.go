package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"

	"paperseal/internal/secret"
)

var errEmptyPassphrase = errors.New("passphrase cannot be empty")

func getPassphrase(prompt string) (*secret.Buffer, error) {
	// First check environment variable
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return secret.FromString(envPass), nil
	}

	passphrase, err := readPassword(prompt)
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, errEmptyPassphrase
	}
	return secret.New(passphrase), nil
}

func getPassphraseWithConfirm(prompt, confirmPrompt string) (*secret.Buffer, error) {
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return secret.FromString(envPass), nil
	}

	passphrase, err := readPassword(prompt)
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, errEmptyPassphrase
	}

	confirm, err := readPassword(confirmPrompt)
	if err != nil {
		secret.Wipe(passphrase)
		return nil, err
	}
	defer secret.Wipe(confirm)

	if !bytes.Equal(passphrase, confirm) {
		secret.Wipe(passphrase)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return secret.New(passphrase), nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	var passphrase []byte
	var err error

	if term.IsTerminal(int(syscall.Stdin)) {
		passphrase, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
	} else {
		// STDIN carries the secret, so the passphrase comes from the terminal
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("passphrase must be set via %s environment variable when STDIN is piped", PassphraseEnvVar)
			}
			return nil, fmt.Errorf("cannot read passphrase: STDIN is piped and /dev/tty is not available. Set %s environment variable", PassphraseEnvVar)
		}
		defer tty.Close()

		passphrase, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(os.Stderr)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return passphrase, nil
}
