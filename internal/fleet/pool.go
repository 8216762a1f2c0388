package fleet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/inovacc/fleetroster/internal/model"
)

// Range is an inclusive unit range.
type Range = model.Range

// Size limits keep the resolved pool small enough to expand in memory.
const (
	MaxRangeSpan = 10_000
	MaxPoolUnits = 100_000
)

// ResolvePool expands ranges into the ascending, deduplicated set of units.
func ResolvePool(ranges []Range) []int {
	size := 0
	for _, r := range ranges {
		size += r.Len()
	}

	units := make([]int, 0, size)
	for _, r := range ranges {
		for u := r.Min; u <= r.Max; u++ {
			units = append(units, u)
		}
	}

	slices.Sort(units)

	return slices.Compact(units)
}

// ValidateRange checks the bounds of a single range.
func ValidateRange(r Range) error {
	if r.Min < 1 {
		return fmt.Errorf("%w: minimum %d must be at least 1", ErrInvalidRange, r.Min)
	}

	if r.Max < r.Min {
		return fmt.Errorf("%w: maximum %d is below minimum %d", ErrInvalidRange, r.Max, r.Min)
	}

	if r.Len() > MaxRangeSpan {
		return fmt.Errorf("%w: %d units exceed the limit of %d per range", ErrInvalidRange, r.Len(), MaxRangeSpan)
	}

	return nil
}

// AddRange returns a new slice with r inserted, sorted by Min. The input is
// never modified. An overlap with any existing range is rejected.
func AddRange(ranges []Range, r Range) ([]Range, error) {
	if err := ValidateRange(r); err != nil {
		return nil, err
	}

	total := r.Len()
	for _, existing := range ranges {
		if r.Overlaps(existing) {
			return nil, &RangeOverlapError{New: r, Existing: existing}
		}
		total += existing.Len()
	}

	if total > MaxPoolUnits {
		return nil, fmt.Errorf("%w: pool would hold %d units, limit is %d", ErrInvalidRange, total, MaxPoolUnits)
	}

	out := make([]Range, 0, len(ranges)+1)
	out = append(out, ranges...)
	out = append(out, r)

	slices.SortFunc(out, func(a, b Range) int {
		return a.Min - b.Min
	})

	return out, nil
}

// RemoveRange returns a new slice without the range at index i.
func RemoveRange(ranges []Range, i int) ([]Range, error) {
	if i < 0 || i >= len(ranges) {
		return nil, fmt.Errorf("range %d: %w", i, ErrIndexOutOfRange)
	}

	out := make([]Range, 0, len(ranges)-1)
	out = append(out, ranges[:i]...)

	return append(out, ranges[i+1:]...), nil
}

// FormatRanges renders ranges as "1-50 / 51-100".
func FormatRanges(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}

	return strings.Join(parts, " / ")
}

// Pool is the resolved set of valid unit identifiers.
type Pool struct {
	units []int
	index map[int]struct{}
}

// NewPool resolves ranges into a Pool.
func NewPool(ranges []Range) Pool {
	units := ResolvePool(ranges)
	index := make(map[int]struct{}, len(units))

	for _, u := range units {
		index[u] = struct{}{}
	}

	return Pool{units: units, index: index}
}

// Contains reports whether unit belongs to the pool.
func (p Pool) Contains(unit int) bool {
	_, ok := p.index[unit]
	return ok
}

// Units returns a sorted copy of the pool.
func (p Pool) Units() []int {
	return slices.Clone(p.units)
}

// Len returns the pool size.
func (p Pool) Len() int {
	return len(p.units)
}
