package fleet

import (
	"fmt"
	"slices"
)

const groupSize = 100

// UnitGroup is a block of units sharing the same hundred, e.g. "101-200".
type UnitGroup struct {
	Label string
	Units []int
}

// GroupByHundred splits units into blocks of one hundred for pickers and
// grids. Output groups and the units inside them are ascending.
func GroupByHundred(units []int) []UnitGroup {
	sorted := slices.Clone(units)
	slices.Sort(sorted)

	var groups []UnitGroup

	for _, u := range sorted {
		start := ((u-1)/groupSize)*groupSize + 1
		label := fmt.Sprintf("%d-%d", start, start+groupSize-1)

		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Units = append(groups[n-1].Units, u)
			continue
		}

		groups = append(groups, UnitGroup{Label: label, Units: []int{u}})
	}

	return groups
}
