// Package escape converts text to and from its HTML-safe form using named,
// decimal and hexadecimal character references.
//
// Both directions are pure functions of their input: they never fail, never
// mutate shared state and may be called concurrently. When nothing needs to be
// substituted the input string itself is returned, so callers can compare the
// result with the input to detect a no-op cheaply.
package escape

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/schovi/htmlesc/internal/entity"
)

type escapeConfig struct {
	decimal bool
	named   bool
	table   *entity.Table
}

// EscapeOption configures Escape.
type EscapeOption func(*escapeConfig)

// WithDecimal selects decimal digits for numeric references (&#233;) instead
// of the default uppercase hexadecimal form (&#xE9;).
func WithDecimal(decimal bool) EscapeOption {
	return func(c *escapeConfig) {
		c.decimal = decimal
	}
}

// WithNamedReferences enables or disables named references such as &eacute;.
// Enabled by default.
func WithNamedReferences(named bool) EscapeOption {
	return func(c *escapeConfig) {
		c.named = named
	}
}

// WithEscapeTable replaces the HTML4 table used for named references.
func WithEscapeTable(t *entity.Table) EscapeOption {
	return func(c *escapeConfig) {
		if t != nil {
			c.table = t
		}
	}
}

// Escape returns s with every character that is unsafe in HTML replaced by a
// character reference. A character with a named reference is written in named
// form when named references are enabled; otherwise non-ASCII characters and
// the markup characters < > " ' & are written as numeric references.
//
// If no character needs replacing, s is returned unchanged.
func Escape(s string, opts ...EscapeOption) string {
	cfg := escapeConfig{named: true, table: entity.HTML4()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	changed := false
	left := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		if cfg.named {
			if ref, ok := cfg.table.Reference(r); ok {
				changed = grow(&b, changed, len(s))
				b.WriteString(s[left:i])
				b.WriteString(ref)
				i += size
				left = i
				continue
			}
		}

		if needsNumeric(r) {
			changed = grow(&b, changed, len(s))
			b.WriteString(s[left:i])
			writeNumeric(&b, r, cfg.decimal)
			i += size
			left = i
			continue
		}

		i += size
	}

	if !changed {
		return s
	}
	b.WriteString(s[left:])
	return b.String()
}

// grow sizes the builder on the first substitution. Output is never shorter
// than the input.
func grow(b *strings.Builder, changed bool, n int) bool {
	if !changed {
		b.Grow(n + n/8 + 8)
	}
	return true
}

func writeNumeric(b *strings.Builder, r rune, decimal bool) {
	var buf [16]byte
	out := append(buf[:0], '&', '#')
	if decimal {
		out = strconv.AppendUint(out, uint64(r), 10)
	} else {
		out = append(out, 'x')
		start := len(out)
		out = strconv.AppendUint(out, uint64(r), 16)
		for j := start; j < len(out); j++ {
			if out[j] >= 'a' {
				out[j] -= 'a' - 'A'
			}
		}
	}
	out = append(out, ';')
	b.Write(out)
}
