package model

import "fmt"

// Range is an inclusive span of unit identifiers.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Overlaps reports whether r and o share at least one unit. Both bounds are inclusive.
func (r Range) Overlaps(o Range) bool {
	return r.Min <= o.Max && r.Max >= o.Min
}

// Contains reports whether unit falls inside r.
func (r Range) Contains(unit int) bool {
	return unit >= r.Min && unit <= r.Max
}

// Len returns the number of units in r.
func (r Range) Len() int {
	if r.Max < r.Min {
		return 0
	}

	return r.Max - r.Min + 1
}
