package flowindex

import "strings"

// Policy controls how FromRadixPolicy derives an overflow alphabet.
type Policy struct {
	// BaseAlphabet is the ordered set of candidate overflow characters.
	BaseAlphabet string
	// Ambiguous lists characters dropped when a human-readable alphabet is
	// requested.
	Ambiguous string
	// ReservedFrom is the radix above which leading letters are reserved as
	// digit glyphs. Zero disables reservation.
	ReservedFrom int
}

// DefaultPolicy uses the Latin uppercase alphabet, treats 'O' and 'I' as
// ambiguous and reserves one letter per radix step above 10.
var DefaultPolicy = Policy{
	BaseAlphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	Ambiguous:    "OI",
	ReservedFrom: 10,
}

func (p Policy) alphabet(humanReadable bool) string {
	if !humanReadable || p.Ambiguous == "" {
		return p.BaseAlphabet
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(p.Ambiguous, r) {
			return -1
		}
		return r
	}, p.BaseAlphabet)
}
