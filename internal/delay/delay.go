// Package delay provides the latency policies imposed on stub responses.
package delay

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrInvalidRange is returned when a range policy has min greater than max.
var ErrInvalidRange = errors.New("minimum delay must not exceed maximum delay")

// Policy produces the delay to impose on a single request.
//
// Implementations must be safe for concurrent use by many request handlers.
type Policy interface {
	Sample() time.Duration
}

// Fixed always returns the same delay.
type Fixed time.Duration

// Sample returns the configured delay.
func (f Fixed) Sample() time.Duration {
	return time.Duration(f)
}

// String implements fmt.Stringer.
func (f Fixed) String() string {
	return time.Duration(f).String()
}

// Range samples a delay uniformly from [Min, Max] inclusive.
//
// Sampling uses the math/rand/v2 top-level source, which keeps per-goroutine
// state, so concurrent handlers never serialize on a shared lock.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// NewRange returns a Range policy, or ErrInvalidRange when min > max.
func NewRange(min, max time.Duration) (Range, error) {
	if min < 0 || max < 0 {
		return Range{}, fmt.Errorf("delay must not be negative: %s-%s", min, max)
	}
	if min > max {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, min, max)
	}
	return Range{Min: min, Max: max}, nil
}

// Sample returns a uniformly distributed delay in [Min, Max].
func (r Range) Sample() time.Duration {
	span := int64(r.Max - r.Min)
	if span <= 0 {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int64N(span+1))
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Min, r.Max)
}

// New returns the policy for the given bounds: Fixed when min == max,
// Range otherwise.
func New(min, max time.Duration) (Policy, error) {
	if min == max {
		if min < 0 {
			return nil, fmt.Errorf("delay must not be negative: %s", min)
		}
		return Fixed(min), nil
	}
	r, err := NewRange(min, max)
	if err != nil {
		return nil, err
	}
	return r, nil
}
