package idgen

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Siddarth2230/flowcode/pkg/flowindex"
)

func TestCodeGenerator_Sequential(t *testing.T) {
	gen := NewCodeGenerator(NewMemorySequence(), flowindex.MustFromRadix(10, true))
	ctx := context.Background()

	want := []string{"001", "002", "003"}
	for i, expected := range want {
		c, err := gen.Generate(ctx, "orders", 3)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if c.Code != expected {
			t.Errorf("Generate() #%d = %s; want %s", i+1, c.Code, expected)
		}
		if c.Value != uint64(i+1) {
			t.Errorf("Generate() #%d value = %d; want %d", i+1, c.Value, i+1)
		}
	}
}

func TestCodeGenerator_Overflow(t *testing.T) {
	seq := NewMemorySequence()
	seq.Seed("orders", 998)
	gen := NewCodeGenerator(seq, flowindex.MustFromRadix(10, true))
	ctx := context.Background()

	tests := []struct {
		code string
		tier int
	}{
		{"999", 0},
		{"A00", 1},
		{"A01", 1},
	}
	for _, tt := range tests {
		c, err := gen.Generate(ctx, "orders", 3)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if c.Code != tt.code || c.Tier != tt.tier {
			t.Errorf("Generate() = %s (tier %d); want %s (tier %d)", c.Code, c.Tier, tt.code, tt.tier)
		}
	}
}

func TestCodeGenerator_Exhausted(t *testing.T) {
	seq := NewMemorySequence()
	seq.Seed("orders", 3639)
	gen := NewCodeGenerator(seq, flowindex.MustFromRadix(10, true))

	_, err := gen.Generate(context.Background(), "orders", 3)
	if !errors.Is(err, ErrSequenceExhausted) {
		t.Errorf("Generate() error = %v; want ErrSequenceExhausted", err)
	}
	if !errors.Is(err, flowindex.ErrRange) {
		t.Errorf("Generate() error = %v; want flowindex.ErrRange", err)
	}

	c, err := gen.Generate(context.Background(), "orders", 4)
	if err != nil {
		t.Fatalf("Generate() with longer length error = %v", err)
	}
	if c.Code != "3641" {
		t.Errorf("Generate() = %s; want 3641", c.Code)
	}
}

func TestCodeGenerator_InvalidInput(t *testing.T) {
	seq := NewMemorySequence()
	gen := NewCodeGenerator(seq, flowindex.MustFromRadix(10, true))
	ctx := context.Background()

	for _, length := range []int{0, flowindex.MaxLength + 1, 50_000_000} {
		if _, err := gen.Generate(ctx, "orders", length); !errors.Is(err, flowindex.ErrLength) {
			t.Errorf("Generate(length=%d) error = %v; want ErrLength", length, err)
		}
	}
	if cur, _ := seq.Current(ctx, "orders"); cur != 0 {
		t.Errorf("invalid length advanced sequence to %d", cur)
	}
	if _, err := gen.Generate(ctx, "", 3); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Generate() error = %v; want ErrEmptySequence", err)
	}
}

func TestCodeGenerator_Remaining(t *testing.T) {
	seq := NewMemorySequence()
	gen := NewCodeGenerator(seq, flowindex.MustFromRadix(10, true))
	ctx := context.Background()

	if n, _ := gen.Remaining(ctx, "orders", 3); n != 3639 {
		t.Errorf("Remaining() = %d; want 3639", n)
	}
	c, err := gen.Generate(ctx, "orders", 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if c.Remaining != 3638 {
		t.Errorf("Code.Remaining = %d; want 3638", c.Remaining)
	}
	if n, _ := gen.Remaining(ctx, "orders", 3); n != c.Remaining {
		t.Errorf("Remaining() = %d; want %d", n, c.Remaining)
	}
	seq.Seed("orders", 4000)
	if n, _ := gen.Remaining(ctx, "orders", 3); n != 0 {
		t.Errorf("Remaining() = %d; want 0", n)
	}
}

func TestMemorySequence_Concurrency(t *testing.T) {
	seq := NewMemorySequence()
	gen := NewCodeGenerator(seq, flowindex.MustFromRadix(10, true))
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c, err := gen.Generate(ctx, "shared", 4)
				if err != nil {
					t.Errorf("Generate() error = %v", err)
					return
				}
				mu.Lock()
				if seen[c.Code] {
					t.Errorf("duplicate code %s", c.Code)
				}
				seen[c.Code] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 1000 {
		t.Errorf("issued %d distinct codes; want 1000", len(seen))
	}
}
