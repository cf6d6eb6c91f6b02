package entity

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Entry is one named character reference.
type Entry struct {
	Name string `json:"name"`
	Rune rune   `json:"rune"`
}

// Reference returns the reference as written in markup, e.g. "&amp;".
func (e Entry) Reference() string {
	return "&" + e.Name + ";"
}

// CodePoint returns the code point in U+XXXX notation.
func (e Entry) CodePoint() string {
	return fmt.Sprintf("U+%04X", e.Rune)
}

// Table maps code points to named references and back.
// A Table is never modified after construction and is safe for concurrent use.
type Table struct {
	entries []Entry
	encode  map[rune]string
	decode  map[string]rune
}

// aliases are accepted when decoding but never produced when encoding.
var aliases = []Entry{
	{"apos", '\''},
}

// HTML4 returns the shared HTML 4.01 table.
var HTML4 = sync.OnceValue(func() *Table {
	return newTable(html4, aliases)
})

func newTable(entries, decodeOnly []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		encode:  make(map[rune]string, len(entries)),
		decode:  make(map[string]rune, len(entries)+len(decodeOnly)),
	}
	for _, e := range entries {
		ref := e.Reference()
		if _, dup := t.encode[e.Rune]; !dup {
			t.encode[e.Rune] = ref
		}
		t.decode[ref] = e.Rune
		t.entries = append(t.entries, e)
	}
	for _, e := range decodeOnly {
		t.decode[e.Reference()] = e.Rune
	}
	sort.Slice(t.entries, func(i, j int) bool {
		if t.entries[i].Rune != t.entries[j].Rune {
			return t.entries[i].Rune < t.entries[j].Rune
		}
		return t.entries[i].Name < t.entries[j].Name
	})
	return t
}

// Reference returns the named reference for r, including the leading '&'
// and trailing ';'.
func (t *Table) Reference(r rune) (string, bool) {
	ref, ok := t.encode[r]
	return ref, ok
}

// Decode resolves a reference written as "&name;".
func (t *Table) Decode(ref string) (rune, bool) {
	r, ok := t.decode[ref]
	return r, ok
}

// Lookup resolves a loosely written query: "amp", "amp;", "&amp", "&amp;"
// or a single character such as "&".
func (t *Table) Lookup(query string) (Entry, bool) {
	if query == "" {
		return Entry{}, false
	}
	if r, size := utf8.DecodeRuneInString(query); size == len(query) && r != utf8.RuneError {
		if ref, ok := t.encode[r]; ok {
			return Entry{Name: ref[1 : len(ref)-1], Rune: r}, true
		}
		if !isNameStart(r) {
			return Entry{}, false
		}
	}
	name := strings.TrimSuffix(strings.TrimPrefix(query, "&"), ";")
	if name == "" {
		return Entry{}, false
	}
	r, ok := t.decode["&"+name+";"]
	if !ok {
		return Entry{}, false
	}
	return Entry{Name: name, Rune: r}, true
}

func isNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Entries returns a copy of the encodable entries ordered by code point.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len reports the number of encodable entries.
func (t *Table) Len() int {
	return len(t.entries)
}
