package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/Siddarth2230/flowcode/internal/models"
	"github.com/Siddarth2230/flowcode/internal/repository"
	"github.com/Siddarth2230/flowcode/pkg/cache"
	"github.com/Siddarth2230/flowcode/pkg/flowindex"
	"github.com/Siddarth2230/flowcode/pkg/idgen"
	"github.com/Siddarth2230/flowcode/pkg/metrics"
)

var (
	ErrInvalidSequence = errors.New("invalid sequence name")
	ErrNotFound        = errors.New("code not found")
	ErrGenExhausted    = errors.New("failed to issue a unique code after retries")
	ErrLengthBounds    = errors.New("length outside the configured bounds")
)

var sequenceRE = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Store persists issued codes.
type Store interface {
	Save(ctx context.Context, c *models.IssuedCode) error
	FindByCode(ctx context.Context, sequence, code string) (*models.IssuedCode, error)
	ListBySequence(ctx context.Context, sequence string, limit int) ([]models.IssuedCode, error)
}

// RemoteCache is a shared cache tier behind the in-process LRU.
type RemoteCache interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	DefaultLength int
	// MinLength and MaxLength bound caller-chosen lengths. MinLength applies
	// to issuing only; MaxLength is capped at flowindex.MaxLength.
	MinLength int
	MaxLength int
	CacheSize int
	// SequenceLabels caps how many sequence names get their own metric
	// series.
	SequenceLabels int
	L2             RemoteCache // optional
}

// CodeService issues codes from named sequences and answers formatting
// queries.
type CodeService struct {
	store         Store
	generator     idgen.Generator
	formatter     *flowindex.Formatter
	defaultLength int
	minLength     int
	maxLength     int
	cache         *cache.LRUCache[*models.IssuedCode]
	l2            RemoteCache
	labels        *metrics.LabelSet
}

func NewCodeService(store Store, gen idgen.Generator, f *flowindex.Formatter, opts Options) *CodeService {
	if opts.MinLength < 1 {
		opts.MinLength = 1
	}
	if opts.MaxLength < 1 || opts.MaxLength > flowindex.MaxLength {
		opts.MaxLength = flowindex.MaxLength
	}
	if opts.DefaultLength < 1 {
		opts.DefaultLength = 6
	}
	opts.DefaultLength = min(max(opts.DefaultLength, opts.MinLength), opts.MaxLength)
	return &CodeService{
		store:         store,
		generator:     gen,
		formatter:     f,
		defaultLength: opts.DefaultLength,
		minLength:     opts.MinLength,
		maxLength:     opts.MaxLength,
		cache:         cache.NewLRUCache[*models.IssuedCode](opts.CacheSize),
		l2:            opts.L2,
		labels:        metrics.NewLabelSet(opts.SequenceLabels),
	}
}

// Issue draws the next value of sequence, renders it and records it.
// It retries when the store already holds the code, which happens when a
// sequence backend was reset behind an existing history.
func (s *CodeService) Issue(ctx context.Context, sequence string, req models.IssueRequest) (*models.IssuedCode, error) {
	if !sequenceRE.MatchString(sequence) {
		metrics.EncodeFailures.WithLabelValues("sequence").Inc()
		return nil, ErrInvalidSequence
	}
	length := req.Length
	if length == 0 {
		length = s.defaultLength
	}
	if err := s.checkLength(length, s.minLength); err != nil {
		recordFailure(err)
		return nil, err
	}

	const maxAttempts = 5
	for i := 0; i < maxAttempts; i++ {
		c, err := s.generator.Generate(ctx, sequence, length)
		if err != nil {
			recordFailure(err)
			return nil, err
		}

		issued := &models.IssuedCode{
			Sequence: c.Sequence,
			Value:    c.Value,
			Code:     c.Code,
			Length:   c.Length,
			Tier:     c.Tier,
			IssuedAt: time.Now().UTC(),
		}
		if err := s.store.Save(ctx, issued); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				slog.Warn("code already issued, advancing sequence",
					"sequence", sequence, "code", c.Code, "attempt", i+1, "max_attempts", maxAttempts)
				s.forget(ctx, cacheKey(sequence, c.Code))
				continue
			}
			return nil, err
		}

		label := s.labels.Label(sequence)
		metrics.CodesIssued.WithLabelValues(label, strconv.Itoa(c.Tier)).Inc()
		metrics.SequenceRemaining.WithLabelValues(label, strconv.Itoa(length)).Set(float64(c.Remaining))
		s.remember(ctx, issued)
		return issued, nil
	}
	return nil, ErrGenExhausted
}

// Lookup returns a previously issued code, checking the LRU, then the
// remote cache, then the store.
func (s *CodeService) Lookup(ctx context.Context, sequence, code string) (*models.IssuedCode, error) {
	if !sequenceRE.MatchString(sequence) {
		return nil, ErrInvalidSequence
	}
	key := cacheKey(sequence, code)

	if c, ok := s.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("l1").Inc()
		return c, nil
	}
	metrics.CacheMisses.WithLabelValues("l1").Inc()

	if s.l2 != nil {
		var c models.IssuedCode
		err := s.l2.Get(ctx, key, &c)
		switch {
		case err == nil:
			metrics.CacheHits.WithLabelValues("l2").Inc()
			s.cache.Put(key, &c)
			return &c, nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheMisses.WithLabelValues("l2").Inc()
		default:
			slog.Warn("remote cache read failed", "key", key, "err", err)
		}
	}

	c, err := s.store.FindByCode(ctx, sequence, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	s.remember(ctx, c)
	return c, nil
}

// Recent lists the latest codes issued from sequence.
func (s *CodeService) Recent(ctx context.Context, sequence string, limit int) ([]models.IssuedCode, error) {
	if !sequenceRE.MatchString(sequence) {
		return nil, ErrInvalidSequence
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.store.ListBySequence(ctx, sequence, limit)
}

// Status reports how many codes of length sequence can still issue. A zero
// length means the default length.
func (s *CodeService) Status(ctx context.Context, sequence string, length int) (*models.SequenceStatus, error) {
	if !sequenceRE.MatchString(sequence) {
		return nil, ErrInvalidSequence
	}
	if length == 0 {
		length = s.defaultLength
	}
	if err := s.checkLength(length, 1); err != nil {
		return nil, err
	}
	remaining, err := s.generator.Remaining(ctx, sequence, length)
	if err != nil {
		return nil, err
	}
	metrics.SequenceRemaining.WithLabelValues(s.labels.Label(sequence), strconv.Itoa(length)).Set(float64(remaining))
	return &models.SequenceStatus{
		Sequence:  sequence,
		Length:    length,
		Capacity:  s.formatter.Capacity(length),
		Remaining: remaining,
		Exhausted: remaining == 0,
	}, nil
}

// Preview encodes value without touching any sequence.
func (s *CodeService) Preview(value uint64, length int) (*models.EncodeResponse, error) {
	if err := s.checkLength(length, 1); err != nil {
		recordFailure(err)
		return nil, err
	}
	tier, err := s.formatter.Tier(value, length)
	if err != nil {
		recordFailure(err)
		return nil, err
	}
	code, err := s.formatter.Encode(value, length)
	if err != nil {
		return nil, err
	}
	return &models.EncodeResponse{Value: value, Length: length, Code: code, Tier: tier}, nil
}

// Capacity describes how many values a code of length can carry and where
// each tier starts.
func (s *CodeService) Capacity(length int) (*models.CapacityResponse, error) {
	if err := s.checkLength(length, 1); err != nil {
		return nil, err
	}
	resp := &models.CapacityResponse{
		Radix:    s.formatter.Radix(),
		Alphabet: s.formatter.Alphabet(),
		Length:   length,
		Capacity: s.formatter.Capacity(length),
	}
	for _, tr := range s.formatter.Tiers(length) {
		code, err := s.formatter.Encode(tr.First, length)
		if err != nil {
			return nil, fmt.Errorf("encoding first value of tier %d: %w", tr.Tier, err)
		}
		resp.Tiers = append(resp.Tiers, models.TierCapacity{
			Tier:  tr.Tier,
			First: tr.First,
			Last:  tr.Last,
			Code:  code,
		})
	}
	return resp, nil
}

func (s *CodeService) remember(ctx context.Context, c *models.IssuedCode) {
	key := cacheKey(c.Sequence, c.Code)
	s.cache.Put(key, c)
	metrics.CacheSize.WithLabelValues("l1").Set(float64(s.cache.Len()))
	if s.l2 == nil {
		return
	}
	if err := s.l2.Set(ctx, key, c); err != nil {
		slog.Warn("remote cache write failed", "key", key, "err", err)
	}
}

func (s *CodeService) forget(ctx context.Context, key string) {
	s.cache.Delete(key)
	if s.l2 == nil {
		return
	}
	if err := s.l2.Delete(ctx, key); err != nil {
		slog.Warn("remote cache delete failed", "key", key, "err", err)
	}
}

// checkLength rejects lengths the formatter cannot take with a
// *flowindex.LengthError and lengths outside the service bounds with
// ErrLengthBounds.
func (s *CodeService) checkLength(length, minLength int) error {
	if length < 1 || length > flowindex.MaxLength {
		return &flowindex.LengthError{Length: length}
	}
	if length < minLength || length > s.maxLength {
		return fmt.Errorf("%w: length %d not in %d..%d", ErrLengthBounds, length, minLength, s.maxLength)
	}
	return nil
}

func cacheKey(sequence, code string) string {
	return sequence + "/" + code
}

func recordFailure(err error) {
	switch {
	case errors.Is(err, flowindex.ErrLength):
		metrics.EncodeFailures.WithLabelValues("length").Inc()
	case errors.Is(err, ErrLengthBounds):
		metrics.EncodeFailures.WithLabelValues("length").Inc()
	case errors.Is(err, flowindex.ErrRange):
		metrics.EncodeFailures.WithLabelValues("range").Inc()
	}
}
