package escape

import "unicode/utf8"

func isDecDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDecDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIAlnum(r rune) bool {
	return isASCIIAlpha(r) || isDecDigit(r)
}

// isTagUnsafe reports whether r cannot appear literally inside tag syntax.
func isTagUnsafe(r rune) bool {
	return r == '<' || r == '>'
}

// isAttributeUnsafe reports whether r cannot appear literally inside an
// attribute value.
func isAttributeUnsafe(r rune) bool {
	return r == '"' || r == '\'' || r == '&'
}

// needsNumeric reports whether r must be written as a numeric reference when
// no named reference is used for it.
func needsNumeric(r rune) bool {
	return r >= utf8.RuneSelf || isTagUnsafe(r) || isAttributeUnsafe(r)
}

type state uint8

const (
	stateInvalid state = iota
	stateUnknown
	stateNumber
	stateDec
	stateHex
	stateNamed
)

var stateNames = [...]string{
	stateInvalid: "invalid",
	stateUnknown: "unknown",
	stateNumber:  "number",
	stateDec:     "dec",
	stateHex:     "hex",
	stateNamed:   "named",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(?)"
}

// accepts reports whether r is valid content for an accumulating state.
func (s state) accepts(r rune) bool {
	switch s {
	case stateDec:
		return isDecDigit(r)
	case stateHex:
		return isHexDigit(r)
	case stateNamed:
		return isASCIIAlnum(r)
	}
	return false
}
