package flowindex

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Decimal(t *testing.T) {
	f := MustFromRadix(10, true)

	tests := []struct {
		value    uint64
		length   int
		expected string
	}{
		{1, 3, "001"},
		{999, 3, "999"},
		{1000, 3, "A00"},
		{2599, 3, "R99"},
		{2600, 3, "S00"},
		{3399, 3, "Z99"},
		{3400, 3, "ZA0"},
		{3639, 3, "ZZ9"},
		{0, 1, "0"},
		{9, 1, "9"},
		{10, 1, "A"},
		{33, 1, "Z"},
		{100, 2, "A0"},
		{339, 2, "Z9"},
		{340, 2, "ZA"},
		{363, 2, "ZZ"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			code, err := f.Encode(tc.value, tc.length)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestEncode_FullAlphabet(t *testing.T) {
	f := MustFromRadix(10, false)

	assert.Equal(t, uint64(3859), f.Capacity(3))

	code, err := f.Encode(3859, 3)
	require.NoError(t, err)
	assert.Equal(t, "ZZ9", code)

	code, err = f.Encode(1800, 3)
	require.NoError(t, err)
	assert.Equal(t, "I00", code)
}

func TestEncode_Hex(t *testing.T) {
	f := MustFromRadix(16, true)
	assert.Equal(t, "GHJKLMNPQRSTUVWXYZ", f.Alphabet())

	code, err := f.Encode(0xfff, 3)
	require.NoError(t, err)
	assert.Equal(t, "fff", code)

	code, err = f.Encode(0x1000, 3)
	require.NoError(t, err)
	assert.Equal(t, "G00", code)

	assert.Equal(t, uint64(4095+18*256+18*16), f.Capacity(3))
	code, err = f.Encode(f.Capacity(3), 3)
	require.NoError(t, err)
	assert.Equal(t, "ZZf", code)
}

func TestEncode_InvalidLength(t *testing.T) {
	f := MustFromRadix(10, true)

	for _, length := range []int{0, -1, math.MinInt32, MaxLength + 1, 50_000_000, math.MaxInt} {
		t.Run(fmt.Sprint(length), func(t *testing.T) {
			_, err := f.Encode(1, length)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLength)

			var le *LengthError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, length, le.Length)
		})
	}
}

func TestEncode_MaxLength(t *testing.T) {
	f := MustFromRadix(2, false)

	code, err := f.Encode(math.MaxUint64, MaxLength)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("1", MaxLength), code)

	code, err = f.Encode(1, MaxLength)
	require.NoError(t, err)
	assert.Len(t, code, MaxLength)

	_, err = f.Tier(1, math.MaxInt)
	assert.ErrorIs(t, err, ErrLength)
}

func TestLengthFor(t *testing.T) {
	f := MustFromRadix(10, true)

	tests := []struct {
		value  uint64
		length int
	}{
		{0, 1},
		{33, 1},
		{34, 2},
		{3639, 3},
		{3640, 4},
		{math.MaxInt64, 19},
		{math.MaxUint64, 19},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.length, f.LengthFor(tc.value), "value %d", tc.value)
	}

	binary, err := FromCustom(2, "Z")
	require.NoError(t, err)
	assert.Equal(t, 63, binary.LengthFor(math.MaxUint64-1))
	assert.Equal(t, MaxLength, binary.LengthFor(math.MaxUint64))
}

func TestEncode_OutOfRange(t *testing.T) {
	f := MustFromRadix(10, true)

	for length := 1; length <= 6; length++ {
		max := f.Capacity(length)
		_, err := f.Encode(max+1, length)
		require.Error(t, err, "length %d", length)
		assert.ErrorIs(t, err, ErrRange)

		var re *RangeError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, max, re.Capacity)
		assert.Equal(t, max+1, re.Value)
	}

	_, err := f.Encode(3640, 3)
	assert.ErrorIs(t, err, ErrRange)
}

func TestCapacity(t *testing.T) {
	f := MustFromRadix(10, true)

	assert.Equal(t, uint64(0), f.Capacity(0))
	assert.Equal(t, uint64(0), f.Capacity(-3))
	assert.Equal(t, uint64(33), f.Capacity(1))
	assert.Equal(t, uint64(363), f.Capacity(2))
	assert.Equal(t, uint64(3639), f.Capacity(3))
	assert.Equal(t, uint64(math.MaxUint64), f.Capacity(19))
	assert.Equal(t, uint64(math.MaxUint64), f.Capacity(40))
}

func TestEncode_LargeLengths(t *testing.T) {
	f := MustFromRadix(10, true)

	code, err := f.Encode(math.MaxUint64, 20)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", code)

	code, err = f.Encode(math.MaxUint64, 25)
	require.NoError(t, err)
	assert.Equal(t, "0000018446744073709551615", code)

	code, err = f.Encode(10_000_000_000_000_000_000, 19)
	require.NoError(t, err)
	assert.Equal(t, "A000000000000000000", code)

	code, err = f.Encode(math.MaxUint64, 19)
	require.NoError(t, err)
	assert.Equal(t, "J446744073709551615", code)
}

// Every value up to capacity encodes to a distinct code of the requested
// length, and codes sort in value order.
func TestEncode_Properties(t *testing.T) {
	configs := []struct {
		name    string
		f       *Formatter
		lengths []int
	}{
		{"decimal-human", MustFromRadix(10, true), []int{1, 2, 3}},
		{"decimal", MustFromRadix(10, false), []int{1, 2, 3}},
		{"binary", MustFromRadix(2, true), []int{1, 2, 4, 6}},
		{"hex", MustFromRadix(16, true), []int{1, 2, 3}},
		{"base33", MustFromRadix(33, true), []int{1, 2}},
		{"custom-reversed", mustCustom(t, 4, "ZYX"), []int{1, 2, 3, 4}},
	}

	for _, cfg := range configs {
		for _, length := range cfg.lengths {
			t.Run(fmt.Sprintf("%s/%d", cfg.name, length), func(t *testing.T) {
				max := cfg.f.Capacity(length)
				seen := make(map[string]uint64, max+1)
				prev := ""
				for v := uint64(0); v <= max; v++ {
					code, err := cfg.f.Encode(v, length)
					require.NoError(t, err, "value %d", v)
					require.Len(t, code, length, "value %d", v)
					if other, dup := seen[code]; dup {
						t.Fatalf("values %d and %d share code %q", other, v, code)
					}
					seen[code] = v
					if prev != "" {
						require.Equal(t, -1, cfg.f.Compare(prev, code), "%q should sort before %q", prev, code)
					}
					prev = code
				}
			})
		}
	}
}

func TestEncode_ByteOrderSortable(t *testing.T) {
	f := MustFromRadix(10, true)
	prev := ""
	for v := uint64(0); v <= f.Capacity(3); v++ {
		code, err := f.Encode(v, 3)
		require.NoError(t, err)
		require.Less(t, prev, code)
		prev = code
	}
}

func TestTier(t *testing.T) {
	f := MustFromRadix(10, true)

	tests := []struct {
		value uint64
		tier  int
	}{
		{0, 0},
		{999, 0},
		{1000, 1},
		{3399, 1},
		{3400, 2},
		{3639, 2},
	}
	for _, tc := range tests {
		tier, err := f.Tier(tc.value, 3)
		require.NoError(t, err)
		assert.Equal(t, tc.tier, tier, "value %d", tc.value)
	}

	_, err := f.Tier(3640, 3)
	assert.ErrorIs(t, err, ErrRange)
	_, err = f.Tier(1, 0)
	assert.ErrorIs(t, err, ErrLength)
}

func TestTiers(t *testing.T) {
	f := MustFromRadix(10, true)

	assert.Equal(t, []TierRange{
		{Tier: 0, First: 0, Last: 999},
		{Tier: 1, First: 1000, Last: 3399},
		{Tier: 2, First: 3400, Last: 3639},
	}, f.Tiers(3))
	assert.Nil(t, f.Tiers(0))

	for length := 1; length <= 19; length++ {
		tiers := f.Tiers(length)
		require.NotEmpty(t, tiers)
		assert.Equal(t, f.Capacity(length), tiers[len(tiers)-1].Last, "length %d", length)
		for _, tr := range tiers {
			tier, err := f.Tier(tr.First, length)
			require.NoError(t, err)
			assert.Equal(t, tr.Tier, tier)
		}
	}

	wide := f.Tiers(30)
	require.Len(t, wide, 1)
	assert.Equal(t, uint64(math.MaxUint64), wide[0].Last)
}

func TestToRadixString(t *testing.T) {
	dec := MustFromRadix(10, true)
	hex := MustFromRadix(16, true)

	assert.Equal(t, "005", dec.ToRadixString(5, 3))
	assert.Equal(t, "1234", dec.ToRadixString(1234, 2))
	assert.Equal(t, "0", dec.ToRadixString(0, 0))
	assert.Equal(t, "ff", hex.ToRadixString(255, 1))
	assert.Equal(t, "00ff", hex.ToRadixString(255, 4))
}

func TestFromRadix_Unsupported(t *testing.T) {
	tests := []struct {
		radix         int
		humanReadable bool
	}{
		{0, true},
		{-10, false},
		{1, true},
		{37, false},
		{36, false},
		{35, true},
		{34, true},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%v", tc.radix, tc.humanReadable), func(t *testing.T) {
			_, err := FromRadix(tc.radix, tc.humanReadable)
			assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
		})
	}
}

func TestFromRadix_Alphabets(t *testing.T) {
	tests := []struct {
		radix         int
		humanReadable bool
		alphabet      string
	}{
		{10, true, "ABCDEFGHJKLMNPQRSTUVWXYZ"},
		{10, false, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
		{2, false, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
		{12, false, "CDEFGHIJKLMNOPQRSTUVWXYZ"},
		{20, true, "LMNPQRSTUVWXYZ"},
		{35, false, "Z"},
		{33, true, "Z"},
	}
	for _, tc := range tests {
		f, err := FromRadix(tc.radix, tc.humanReadable)
		require.NoError(t, err)
		assert.Equal(t, tc.alphabet, f.Alphabet())
		assert.Equal(t, tc.radix, f.Radix())
	}
}

func TestFromRadixPolicy(t *testing.T) {
	p := Policy{BaseAlphabet: "ABCDEFGHJKMNPQRSTVWXYZ", Ambiguous: "", ReservedFrom: 0}
	f, err := FromRadixPolicy(10, true, p)
	require.NoError(t, err)
	assert.Equal(t, p.BaseAlphabet, f.Alphabet())

	_, err = FromRadixPolicy(16, false, p)
	assert.ErrorIs(t, err, ErrUnsupportedConfiguration, "A-F collide with hex digits when nothing is reserved")
}

func TestFromCustom(t *testing.T) {
	f, err := FromCustom(10, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, uint64(999+300+30), f.Capacity(3))

	code, err := f.Encode(1329, 3)
	require.NoError(t, err)
	assert.Equal(t, "ZZ9", code)

	invalid := []struct {
		name     string
		radix    int
		alphabet string
	}{
		{"empty", 10, ""},
		{"radix", 0, "A"},
		{"repeated", 10, "ABA"},
		{"digit", 10, "A5"},
		{"letter digit", 16, "ABC"},
		{"lowercase letter digit", 16, "xyz0"},
		{"space", 10, "A B"},
		{"non-ascii", 10, "AÄ"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromCustom(tc.radix, tc.alphabet)
			assert.ErrorIs(t, err, ErrUnsupportedConfiguration)
		})
	}
}

func TestCompare(t *testing.T) {
	f := MustFromRadix(10, true)

	assert.Equal(t, -1, f.Compare("Z99", "ZA0"))
	assert.Equal(t, 1, f.Compare("A00", "999"))
	assert.Equal(t, 0, f.Compare("R42", "R42"))
	assert.Equal(t, -1, f.Compare("12", "123"))

	hex := MustFromRadix(16, true)
	assert.Equal(t, -1, hex.Compare("fff", "G00"), "overflow letters rank after every digit glyph")
}

func mustCustom(t *testing.T, radix int, alphabet string) *Formatter {
	t.Helper()
	f, err := FromCustom(radix, alphabet)
	require.NoError(t, err)
	return f
}

func BenchmarkEncode(b *testing.B) {
	f := MustFromRadix(10, true)
	max := f.Capacity(7)
	for i := 0; i < b.N; i++ {
		_, _ = f.Encode(uint64(i)%max, 7)
	}
}
