package commands

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/diogo/cookieschat/internal/api"
	"github.com/diogo/cookieschat/internal/config"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the configuration file and environment.
	LoadConfig func() (config.Config, error)

	// NewGenerator builds the generation backend.
	NewGenerator func(ctx context.Context, backend, apiKey, model string) (api.Generator, error)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether stdin carries a prompt.
	StdinPiped func() bool

	// StdoutTTY reports whether stdout is a terminal.
	StdoutTTY func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:   config.LoadConfig,
		NewGenerator: api.NewGenerator,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		StdinPiped:   isStdinPiped,
		StdoutTTY:    isStdoutTTY,
	}
}

// isStdinPiped returns true if stdin is not a terminal
func isStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// deps is swapped by tests
var deps = NewDependencies()
