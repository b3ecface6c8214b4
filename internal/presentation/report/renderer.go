// Package report renders validation reports and chart inventories for the
// terminal: tables with go-pretty, verdicts with termenv and markdown
// summaries with glamour when stdout is a TTY.
package report

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isTerminalFd(f.Fd())
}

func isTerminalFd(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}
