package shared

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Package-level color variables
var (
	ColorInfo    = color.New(color.FgCyan)
	ColorSuccess = color.New(color.FgGreen)
	ColorWarning = color.New(color.FgYellow)
	ColorError   = color.New(color.FgRed)
	ColorPrompt  = color.New(color.FgBlue, color.Bold) // Used for user prompts
)

// InitializeColors initializes color output based on TTY detection.
// Passing noColor forces plain output regardless of the terminal.
func InitializeColors(noColor bool) {
	color.NoColor = noColor || !isatty.IsTerminal(os.Stdout.Fd())
}

// IsTerminal reports whether stdout is attached to a terminal. Progress
// bar pools are only started when this is true.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
