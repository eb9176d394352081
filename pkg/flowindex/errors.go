package flowindex

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	ErrLength                   = fmt.Errorf("length must be between 1 and %d", MaxLength)
	ErrRange                    = errors.New("value exceeds capacity for length")
	ErrUnsupportedConfiguration = errors.New("unsupported radix or character set")
)

// LengthError is returned when a requested code length is below 1 or above
// MaxLength.
type LengthError struct {
	Length int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("flowindex: length %d: %v", e.Length, ErrLength)
}

func (e *LengthError) Is(target error) bool { return target == ErrLength }

// RangeError is returned when no code of the requested length can represent
// the value.
type RangeError struct {
	Value    uint64
	Length   int
	Capacity uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("flowindex: value %d exceeds capacity %d for length %d", e.Value, e.Capacity, e.Length)
}

func (e *RangeError) Is(target error) bool { return target == ErrRange }

// ConfigError reports why a formatter could not be constructed.
type ConfigError struct {
	Radix  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("flowindex: radix %d: %s", e.Radix, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrUnsupportedConfiguration }
