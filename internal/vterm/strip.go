// Package vterm turns captured terminal output into plain text so it can be
// escaped for HTML.
package vterm

import (
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/vt"
)

const (
	DefaultColumns = 200
	maxRows        = 5000
)

// sequence matches the control sequences that carry no text: CSI (colors,
// erase, DEC private modes), OSC (titles, hyperlinks), charset selection,
// keypad modes and single ESC+letter commands. Carriage returns are dropped too.
var sequence = regexp.MustCompile(
	`\x1b\[[0-9;?]*[A-Za-z~@` + "`" + `]` +
		`|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)` +
		`|\x1b[()#][A-Za-z0-9]` +
		`|\x1b[=>]` +
		`|\x1b[A-Za-z]` +
		`|\r`)

// addressing matches sequences that move the cursor. Text written after them
// only lands in the right place when a real emulator replays the stream.
var addressing = regexp.MustCompile(`\x1b\[\d*;?\d*[HFfGdABCD]`)

// Plain returns s without terminal control sequences. Output with cursor
// movement is replayed through a VT emulator cols wide (DefaultColumns when
// cols <= 0) and the rendered screen is returned; anything else is stripped
// with a regular expression. Text without ESC or CR is returned unchanged.
func Plain(s string, cols int) string {
	if !strings.ContainsAny(s, "\x1b\r") {
		return s
	}
	if cols <= 0 {
		cols = DefaultColumns
	}
	if addressing.MatchString(s) {
		return render(s, cols)
	}
	return sequence.ReplaceAllString(s, "")
}

func render(s string, cols int) string {
	rows := strings.Count(s, "\n") + 100
	if rows > maxRows {
		rows = maxRows
	}

	emu := vt.NewEmulator(cols, rows)

	// Replies to terminal queries are written to the emulator's pipe and
	// block once it fills up, so drain them.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		io.Copy(io.Discard, emu) //nolint:errcheck
	}()

	emu.WriteString(onlcr(s))
	screen := emu.String()
	if pw, ok := emu.InputPipe().(io.Closer); ok {
		pw.Close()
	}
	<-drained
	emu.Close()

	screen = strings.ReplaceAll(screen, "\r\n", "\n")
	screen = strings.ReplaceAll(screen, "\r", "")
	return trimBlankTail(screen)
}

// onlcr maps bare LF to CRLF the way a tty line discipline does; the
// emulator treats LF as a pure line feed.
func onlcr(s string) string {
	var b strings.Builder
	b.Grow(len(s) + strings.Count(s, "\n"))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' && (i == 0 || s[i-1] != '\r') {
			b.WriteByte('\r')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// trimBlankTail right-trims every line and drops trailing blank lines.
func trimBlankTail(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
