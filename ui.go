package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"
)

// style applies a color when the terminal supports it.
type style struct {
	color *color.Color
}

func (s style) Sprint(a ...interface{}) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return text
	}
	return s.color.Sprint(text)
}

func (s style) Sprintf(format string, a ...interface{}) string {
	return s.Sprint(fmt.Sprintf(format, a...))
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	successStyle   = style{color.New(color.FgGreen)}
	errorStyle     = style{color.New(color.FgRed)}
	warningStyle   = style{color.New(color.FgYellow)}
	highlightStyle = style{color.New(color.FgCyan)}
	mutedStyle     = style{color.New(color.FgHiBlack)}
)

const spinnerColor = "cyan"

// startSpinner shows a spinner with message on stderr while slow work runs,
// but only when stderr is a terminal. The returned function stops it.
func startSpinner(w io.Writer, message string, logger hclog.Logger) func() {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	s := newSpinner(f, message, spinnerColor, logger)
	s.Start()
	return s.Stop
}

func newSpinner(w io.Writer, message, colorName string, logger hclog.Logger) *spinner.Spinner {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		// The terminal check must look at the file written to, not stdout.
		opt = spinner.WithWriterFile(f)
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, opt)
	s.Suffix = " " + message

	if err := s.Color(colorName); err != nil {
		// If we can't set spinner color, just continue without it
		logger.Warn("failed to set spinner color", "color", colorName, "error", err)
	}
	return s
}
