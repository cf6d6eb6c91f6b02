// Package textio collects command input and adapts output to where it goes.
package textio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

// MaxInputSize bounds how much is read from a stream.
const MaxInputSize = 64 << 20

// Input returns args joined by single spaces, or everything readable from r
// when there are no args.
func Input(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if r == nil {
		return "", fmt.Errorf("no input")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxInputSize {
		return "", fmt.Errorf("input exceeds %d bytes", MaxInputSize)
	}
	return string(data), nil
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(f.Fd())
}

// Terminate appends a newline for terminal output that does not end in one,
// so the shell prompt starts on its own line. Output for pipes and files is
// left byte-exact.
func Terminate(s string, tty bool) string {
	if !tty || s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
