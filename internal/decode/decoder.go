package decode

import "github.com/a18532086/a32jit/internal/engineerr"

// Table is an ordered list of matchers; the first whose mask/bits accept
// the word wins.
type Table []*Matcher

// Decode matches word against table, returning the winning Matcher and its
// extracted fields. Returns a DecodeMiss EngineError if nothing matches
// (failure mode: the frontend turns this into
// ExceptionRaised(Undefined) + ReturnToDispatch).
func Decode(table Table, word uint32) (*Matcher, Fields, error) {
	for _, m := range table {
		if m.Accepts(word) {
			return m, m.Extract(word), nil
		}
	}
	return nil, nil, engineerr.New(engineerr.KindDecodeMiss, nil, "no matcher for word %#08x", word)
}

// IsUnconditionalSpace reports whether word's top nibble is 0xF, the
// boundary between the main A32 table and the separate
// unconditional-instruction table.
func IsUnconditionalSpace(word uint32) bool {
	return word>>28 == 0xF
}
