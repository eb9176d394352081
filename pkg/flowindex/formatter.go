// Package flowindex renders integer sequences as fixed-length codes.
//
// Values that fit the plain radix range are zero-padded ("001" … "999").
// Past that range the code overflows into letter tiers while keeping its
// length: "A00" … "Z99", then "ZA0" … "ZZ9". Each tier pins one more leading
// position to the last overflow letter and hands one fewer position to
// plain digits.
//
// A Formatter is immutable and safe for concurrent use.
package flowindex

import (
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// MaxLength is the longest code Encode and Tier accept. Any radix of 2 or
// more holds every uint64 well before this length, so longer codes would only
// add leading zeros.
const MaxLength = 64

const (
	minRadix = 2
	maxRadix = 36

	digitGlyphs = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Formatter encodes values for one radix and overflow alphabet.
type Formatter struct {
	radix    uint64
	alphabet string
	last     byte
	rank     [256]int16
}

// FromRadix derives the overflow alphabet from DefaultPolicy.
func FromRadix(radix int, humanReadable bool) (*Formatter, error) {
	return FromRadixPolicy(radix, humanReadable, DefaultPolicy)
}

// MustFromRadix is like FromRadix but panics on error. Intended for
// package-level defaults.
func MustFromRadix(radix int, humanReadable bool) *Formatter {
	f, err := FromRadix(radix, humanReadable)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRadixPolicy derives the overflow alphabet from p. When humanReadable is
// set the policy's ambiguous letters are removed first; for radices above
// ReservedFrom the leading radix-ReservedFrom letters are then dropped since
// they double as digit glyphs.
func FromRadixPolicy(radix int, humanReadable bool, p Policy) (*Formatter, error) {
	if radix < minRadix || radix > maxRadix {
		return nil, &ConfigError{Radix: radix, Reason: "radix must be between 2 and 36"}
	}
	alphabet := p.alphabet(humanReadable)
	if p.ReservedFrom > 0 && radix > p.ReservedFrom {
		reserved := radix - p.ReservedFrom
		if reserved >= len(alphabet) {
			return nil, &ConfigError{Radix: radix, Reason: "no overflow characters left after reserving digit letters"}
		}
		alphabet = alphabet[reserved:]
	}
	return FromCustom(radix, alphabet)
}

// FromCustom builds a formatter from an explicit overflow alphabet. The
// alphabet must be non-empty printable ASCII with distinct characters, none
// of which may collide (ignoring case) with a digit glyph of radix.
func FromCustom(radix int, alphabet string) (*Formatter, error) {
	if radix < minRadix || radix > maxRadix {
		return nil, &ConfigError{Radix: radix, Reason: "radix must be between 2 and 36"}
	}
	if alphabet == "" {
		return nil, &ConfigError{Radix: radix, Reason: "overflow alphabet is empty"}
	}

	f := &Formatter{
		radix:    uint64(radix),
		alphabet: alphabet,
		last:     alphabet[len(alphabet)-1],
	}
	for i := range f.rank {
		f.rank[i] = -1
	}
	for i := 0; i < radix; i++ {
		f.rank[digitGlyphs[i]] = int16(i)
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c < '!' || c > '~' {
			return nil, &ConfigError{Radix: radix, Reason: "overflow alphabet must be printable ASCII"}
		}
		if isDigitGlyph(c, radix) {
			return nil, &ConfigError{Radix: radix, Reason: "overflow character " + strconv.QuoteRune(rune(c)) + " collides with a digit glyph"}
		}
		if f.rank[c] >= 0 {
			return nil, &ConfigError{Radix: radix, Reason: "overflow character " + strconv.QuoteRune(rune(c)) + " is repeated"}
		}
		f.rank[c] = int16(radix + i)
	}
	return f, nil
}

func isDigitGlyph(c byte, radix int) bool {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	i := strings.IndexByte(digitGlyphs, c)
	return i >= 0 && i < radix
}

// Radix returns the base of the plain digit portion.
func (f *Formatter) Radix() int { return int(f.radix) }

// Alphabet returns the overflow alphabet in tier order.
func (f *Formatter) Alphabet() string { return f.alphabet }

// Capacity returns the largest value encodable in exactly length characters,
// overflow tiers included. It is 0 for length < 1 and saturates at
// math.MaxUint64.
func (f *Formatter) Capacity(length int) uint64 {
	if length < 1 {
		return 0
	}
	base, ok := pow(f.radix, length)
	if !ok {
		return math.MaxUint64
	}
	max := base - 1
	n := uint64(len(f.alphabet))
	for seg := base / f.radix; seg > 0; seg /= f.radix {
		max = addSat(max, mulSat(n, seg))
	}
	return max
}

// TierRange is the inclusive value range covered by one tier.
type TierRange struct {
	Tier  int
	First uint64
	Last  uint64
}

// Tiers lists the value ranges for length, plain digits first. The last range
// ends at Capacity(length).
func (f *Formatter) Tiers(length int) []TierRange {
	if length < 1 {
		return nil
	}
	limit, ok := pow(f.radix, length)
	if !ok {
		return []TierRange{{Tier: 0, First: 0, Last: math.MaxUint64}}
	}

	out := []TierRange{{Tier: 0, First: 0, Last: limit - 1}}
	n := uint64(len(f.alphabet))
	extended := limit - 1
	for tier, seg := 1, limit/f.radix; seg > 0 && extended < math.MaxUint64; tier, seg = tier+1, seg/f.radix {
		first := extended + 1
		extended = addSat(extended, mulSat(n, seg))
		out = append(out, TierRange{Tier: tier, First: first, Last: extended})
	}
	return out
}

// LengthFor returns the shortest code length whose capacity reaches value.
func (f *Formatter) LengthFor(value uint64) int {
	for length := 1; length < MaxLength; length++ {
		if f.Capacity(length) >= value {
			return length
		}
	}
	return MaxLength
}

// placement locates a value among the overflow tiers for one length.
type placement struct {
	tier    int    // 0 for plain digits, then 1-based overflow tier
	start   uint64 // first value of the tier
	segment uint64 // values per overflow character
}

func (f *Formatter) locate(value uint64, length int) (placement, error) {
	if length < 1 || length > MaxLength {
		return placement{}, &LengthError{Length: length}
	}
	limit, ok := pow(f.radix, length)
	if !ok || value < limit {
		return placement{}, nil
	}

	n := uint64(len(f.alphabet))
	extended := limit - 1
	for tier, seg := 1, limit/f.radix; seg > 0; tier, seg = tier+1, seg/f.radix {
		start := extended + 1
		extended = addSat(extended, mulSat(n, seg))
		if value <= extended {
			return placement{tier: tier, start: start, segment: seg}, nil
		}
	}
	return placement{}, &RangeError{Value: value, Length: length, Capacity: extended}
}

// Tier reports which overflow tier value falls in for length: 0 for the
// plain digit range, 1 for the first letter tier ("A00"), and so on.
func (f *Formatter) Tier(value uint64, length int) (int, error) {
	p, err := f.locate(value, length)
	if err != nil {
		return 0, err
	}
	return p.tier, nil
}

// Encode renders value as a code of exactly length characters.
//
// It returns a *LengthError when length is outside 1..MaxLength and a
// *RangeError when value is greater than Capacity(length).
func (f *Formatter) Encode(value uint64, length int) (string, error) {
	p, err := f.locate(value, length)
	if err != nil {
		return "", err
	}
	if p.tier == 0 {
		return f.ToRadixString(value, length), nil
	}

	offset := value - p.start
	var b strings.Builder
	b.Grow(length)
	for i := 1; i < p.tier; i++ {
		b.WriteByte(f.last)
	}
	b.WriteByte(f.alphabet[offset/p.segment])
	if p.segment > 1 {
		b.WriteString(f.ToRadixString(offset%p.segment, length-p.tier))
	}
	return b.String(), nil
}

// ToRadixString formats value in the formatter's radix, left-padded with '0'
// to at least minWidth characters. Longer representations are returned as is.
func (f *Formatter) ToRadixString(value uint64, minWidth int) string {
	s := strconv.FormatUint(value, int(f.radix))
	if len(s) >= minWidth {
		return s
	}
	return strings.Repeat("0", minWidth-len(s)) + s
}

// Compare orders two codes of equal length by the formatter's character
// ranking: digit glyphs by value, then overflow characters in alphabet order.
// Characters outside both sets rank lowest.
func (f *Formatter) Compare(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ra, rb := f.rank[a[i]], f.rank[b[i]]
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func pow(base uint64, exp int) (uint64, bool) {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			return 0, false
		}
		result = lo
	}
	return result, true
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}
