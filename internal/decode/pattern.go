// Package decode compiles textual bit-pattern matchers and decodes guest
// instruction words against ordered tables. The matcher compiler here is
// hand-written; the tables themselves are data, populated in
// internal/frontend's init.
package decode

import "fmt"

// Matcher binds a compiled bit-pattern (mask/bits) to the frontend visitor
// that handles it, plus the bit positions of each named field so fields can
// be extracted without re-parsing the pattern text per decode.
type Matcher struct {
	Name   string
	Len    int // 16 (Thumb) or 32 (A32)
	Mask   uint32
	Bits   uint32
	fields map[byte][]uint8 // field letter -> bit positions, MSB-first order of appearance
	Visit  VisitFunc
}

// VisitFunc is the frontend entry point a Matcher dispatches to: it
// receives the extracted named fields and returns true to keep decoding
// the block, false once it has set a terminator.
type VisitFunc func(b Builder, fields Fields) bool

// Builder is the minimal surface decode needs from the frontend to avoid an
// import cycle; internal/frontend implements it.
type Builder interface {
	InstructionWord() uint32
}

// Fields is the set of named bitfields extracted from one decoded
// instruction word, keyed by the pattern's field letter.
type Fields map[byte]uint32

// Field returns fields[name], or 0 if name was not present in the pattern
// (callers should only ask for fields they compiled in).
func (f Fields) Field(name byte) uint32 { return f[name] }

// SignExtend sign-extends the low `bits` bits of v.
func (f Fields) SignExtend(v uint32, bits int) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// Compile parses a textual bit-pattern (each character '0', '1', or a field
// letter; identical letters group into one field preserving the order they
// appear) into a Matcher. Pattern length must be 16 or 32.
func Compile(name, pattern string, visit VisitFunc) (*Matcher, error) {
	n := len(pattern)
	if n != 16 && n != 32 {
		return nil, fmt.Errorf("decode: pattern %q for %s has length %d, want 16 or 32", pattern, name, n)
	}
	m := &Matcher{Name: name, Len: n, fields: make(map[byte][]uint8), Visit: visit}
	for i, c := range []byte(pattern) {
		bitPos := uint8(n - 1 - i)
		switch c {
		case '0':
			m.Mask |= 1 << bitPos
		case '1':
			m.Mask |= 1 << bitPos
			m.Bits |= 1 << bitPos
		default:
			if c < 'a' || c > 'z' {
				return nil, fmt.Errorf("decode: pattern %q for %s has invalid character %q", pattern, name, c)
			}
			m.fields[c] = append(m.fields[c], bitPos)
		}
	}
	return m, nil
}

// MustCompile is Compile but panics on error, for use in package-level
// table initializers (the teacher's own style of failing fast at program
// start on a malformed static table, per pvm's dispatchTable init pattern).
func MustCompile(name, pattern string, visit VisitFunc) *Matcher {
	m, err := Compile(name, pattern, visit)
	if err != nil {
		panic(err)
	}
	return m
}

// Accepts reports whether word matches this matcher's mask/bits.
func (m *Matcher) Accepts(word uint32) bool {
	return word&m.Mask == m.Bits
}

// Extract pulls every named field's value out of word, concatenating bits
// in the order their letter appeared left-to-right in the pattern text.
func (m *Matcher) Extract(word uint32) Fields {
	out := make(Fields, len(m.fields))
	for letter, positions := range m.fields {
		var v uint32
		for _, pos := range positions {
			v = v<<1 | (word>>pos)&1
		}
		out[letter] = v
	}
	return out
}
