package escape

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/schovi/htmlesc/internal/entity"
)

type unescapeConfig struct {
	strict bool
	table  *entity.Table
}

// UnescapeOption configures Unescape.
type UnescapeOption func(*unescapeConfig)

// WithStrict controls whether every reference must end with ';'. Strict by
// default. In lenient mode a reference also ends where its content stops
// (&#65x) or at the end of the input (&amp).
func WithStrict(strict bool) UnescapeOption {
	return func(c *unescapeConfig) {
		c.strict = strict
	}
}

// WithUnescapeTable replaces the HTML4 table used to resolve named references.
func WithUnescapeTable(t *entity.Table) UnescapeOption {
	return func(c *unescapeConfig) {
		if t != nil {
			c.table = t
		}
	}
}

// Unescape replaces every well-formed reference that can be resolved (&lt;,
// &#60;, &#x3C;) with the character it names. Malformed, unterminated and
// unknown references, and numbers that are not Unicode scalar values, are left
// exactly as written.
//
// If no reference was replaced, s is returned unchanged.
func Unescape(s string, opts ...UnescapeOption) string {
	cfg := unescapeConfig{strict: true, table: entity.HTML4()}
	for _, opt := range opts {
		opt(&cfg)
	}
	u := unescaper{cfg: cfg, in: s}
	return u.run()
}

// unescaper holds the state of one Unescape call.
type unescaper struct {
	cfg unescapeConfig
	in  string
	out strings.Builder

	st     state
	buf    []byte
	left   int
	amp    int
	solved bool
}

func (u *unescaper) run() string {
	s := u.in
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		switch u.st {
		case stateInvalid:
			if r == '&' {
				u.st = stateUnknown
				u.amp = i
			}

		case stateUnknown:
			switch {
			case r == '#':
				u.st = stateNumber
			case isASCIIAlpha(r):
				u.st = stateNamed
				continue
			default:
				// Re-read r from the invalid state; it may open the next candidate.
				u.reset()
				continue
			}

		case stateNumber:
			switch {
			case r == 'x' || r == 'X':
				u.st = stateHex
			case isDecDigit(r):
				u.st = stateDec
				continue
			default:
				u.reset()
				continue
			}

		case stateDec, stateHex, stateNamed:
			if !u.st.accepts(r) {
				u.reset()
				continue
			}
			u.buf = append(u.buf, byte(r))
			next := i + size
			if next < len(s) {
				la, laSize := utf8.DecodeRuneInString(s[next:])
				switch {
				case la == ';':
					u.resolve(next + laSize)
					i = next + laSize
					continue
				case !u.cfg.strict && !u.st.accepts(la):
					u.resolve(next)
					i = next
					continue
				}
			} else if !u.cfg.strict {
				u.resolve(next)
				i = next
				continue
			}
		}

		i += size
	}

	if !u.solved {
		return s
	}
	u.out.WriteString(s[u.left:])
	return u.out.String()
}

// resolve decodes the buffered candidate that ends just before end. On
// success the literal run before the '&' is flushed and the decoded scalar
// written; on failure the candidate stays part of the pending literal run.
func (u *unescaper) resolve(end int) {
	if r, ok := u.decode(); ok {
		if !u.solved {
			u.out.Grow(len(u.in))
			u.solved = true
		}
		u.out.WriteString(u.in[u.left:u.amp])
		u.out.WriteRune(r)
		u.left = end
	}
	u.reset()
}

func (u *unescaper) decode() (rune, bool) {
	var (
		v   uint64
		err error
	)
	switch u.st {
	case stateDec:
		v, err = strconv.ParseUint(string(u.buf), 10, 32)
	case stateHex:
		v, err = strconv.ParseUint(string(u.buf), 16, 32)
	case stateNamed:
		return u.cfg.table.Decode("&" + string(u.buf) + ";")
	default:
		return 0, false
	}
	if err != nil || v > utf8.MaxRune {
		return 0, false
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return 0, false
	}
	return r, true
}

func (u *unescaper) reset() {
	u.st = stateInvalid
	u.buf = u.buf[:0]
}
