package idgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/Siddarth2230/flowcode/pkg/flowindex"
)

var (
	ErrSequenceExhausted = errors.New("sequence exhausted for code length")
	ErrEmptySequence     = errors.New("sequence name is empty")
)

// Generator defines the interface for issuing codes from a named sequence.
type Generator interface {
	Generate(ctx context.Context, sequence string, length int) (Code, error)
	Remaining(ctx context.Context, sequence string, length int) (uint64, error)
}

// Sequence hands out monotonically increasing values per name, starting at 1.
type Sequence interface {
	Next(ctx context.Context, name string) (uint64, error)
	Current(ctx context.Context, name string) (uint64, error)
}

// Code is one issued value together with its rendering.
type Code struct {
	Sequence string
	Value    uint64
	Code     string
	Length   int
	Tier     int
	// Remaining is how many more codes of Length the sequence can issue
	// after this one.
	Remaining uint64
}

// CodeGenerator draws values from a Sequence and renders them with a
// flowindex.Formatter.
type CodeGenerator struct {
	seq       Sequence
	formatter *flowindex.Formatter
}

func NewCodeGenerator(seq Sequence, f *flowindex.Formatter) *CodeGenerator {
	return &CodeGenerator{seq: seq, formatter: f}
}

// Generate returns the next code of the given length. The length is checked
// before the sequence advances so a bad request does not burn a value. A
// value past the formatter's capacity yields an error matching both
// ErrSequenceExhausted and flowindex.ErrRange.
func (g *CodeGenerator) Generate(ctx context.Context, sequence string, length int) (Code, error) {
	if sequence == "" {
		return Code{}, ErrEmptySequence
	}
	if length < 1 || length > flowindex.MaxLength {
		return Code{}, &flowindex.LengthError{Length: length}
	}

	val, err := g.seq.Next(ctx, sequence)
	if err != nil {
		return Code{}, fmt.Errorf("failed to advance sequence %q: %w", sequence, err)
	}

	tier, err := g.formatter.Tier(val, length)
	if err != nil {
		if errors.Is(err, flowindex.ErrRange) {
			return Code{}, fmt.Errorf("%w: %w", ErrSequenceExhausted, err)
		}
		return Code{}, err
	}
	code, err := g.formatter.Encode(val, length)
	if err != nil {
		return Code{}, err
	}

	return Code{
		Sequence:  sequence,
		Value:     val,
		Code:      code,
		Length:    length,
		Tier:      tier,
		Remaining: headroom(g.formatter.Capacity(length), val),
	}, nil
}

// Remaining reports how many more codes of length the sequence can issue.
func (g *CodeGenerator) Remaining(ctx context.Context, sequence string, length int) (uint64, error) {
	cur, err := g.seq.Current(ctx, sequence)
	if err != nil {
		return 0, err
	}
	return headroom(g.formatter.Capacity(length), cur), nil
}

func headroom(capacity, cur uint64) uint64 {
	if cur >= capacity {
		return 0
	}
	return capacity - cur
}
