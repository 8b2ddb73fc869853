package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wesleyorama2/ratestub/internal/delay"
)

// ErrInvalidDelay is returned for delay strings that cannot be parsed.
var ErrInvalidDelay = errors.New("invalid delay")

// DelayConfig is a parsed delay setting: a fixed duration when Min == Max,
// otherwise an inclusive range.
type DelayConfig struct {
	Min time.Duration
	Max time.Duration
}

// IsFixed reports whether the delay is a single value.
func (d DelayConfig) IsFixed() bool {
	return d.Min == d.Max
}

// Policy returns the delay policy for this configuration.
func (d DelayConfig) Policy() (delay.Policy, error) {
	return delay.New(d.Min, d.Max)
}

// String implements fmt.Stringer.
func (d DelayConfig) String() string {
	if d.IsFixed() {
		return d.Min.String()
	}
	return fmt.Sprintf("%s-%s", d.Min, d.Max)
}

// ParseDelay parses a delay setting.
//
// Supported formats:
//   - "50"          fixed 50ms
//   - "50ms", "1s"  fixed Go duration
//   - "30-150"      uniform range in milliseconds
//   - "30ms-1.5s"   uniform range of Go durations
//
// A range whose minimum exceeds its maximum is rejected.
func ParseDelay(s string) (DelayConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DelayConfig{}, nil
	}

	if lo, hi, ok := strings.Cut(s, "-"); ok {
		min, err := parseDelayValue(lo)
		if err != nil {
			return DelayConfig{}, fmt.Errorf("%w: minimum %q: %v", ErrInvalidDelay, lo, err)
		}
		max, err := parseDelayValue(hi)
		if err != nil {
			return DelayConfig{}, fmt.Errorf("%w: maximum %q: %v", ErrInvalidDelay, hi, err)
		}
		if min > max {
			return DelayConfig{}, fmt.Errorf("%w: %w (%s > %s)", ErrInvalidDelay, delay.ErrInvalidRange, min, max)
		}
		return DelayConfig{Min: min, Max: max}, nil
	}

	d, err := parseDelayValue(s)
	if err != nil {
		return DelayConfig{}, fmt.Errorf("%w: %q: %v", ErrInvalidDelay, s, err)
	}
	return DelayConfig{Min: d, Max: d}, nil
}

// parseDelayValue parses bare milliseconds or a Go duration.
func parseDelayValue(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}

	if ms, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}
