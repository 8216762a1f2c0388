package fleet

import "slices"

// RepairSet is the sorted set of units currently out of service.
type RepairSet struct {
	units []int
}

// NewRepairSet builds a set from units, dropping duplicates.
func NewRepairSet(units ...int) *RepairSet {
	s := &RepairSet{}
	for _, u := range units {
		s.Report(u)
	}

	return s
}

// Report marks unit as in repair. It returns false if the unit was already reported.
func (s *RepairSet) Report(unit int) bool {
	i, found := slices.BinarySearch(s.units, unit)
	if found {
		return false
	}

	s.units = slices.Insert(s.units, i, unit)

	return true
}

// Repair returns unit to service. It returns false if the unit was not in repair.
func (s *RepairSet) Repair(unit int) bool {
	i, found := slices.BinarySearch(s.units, unit)
	if !found {
		return false
	}

	s.units = slices.Delete(s.units, i, i+1)

	return true
}

// ReportMany reports each unit and returns how many were newly added.
func (s *RepairSet) ReportMany(units ...int) int {
	n := 0
	for _, u := range units {
		if s.Report(u) {
			n++
		}
	}

	return n
}

// RepairMany repairs each unit and returns how many were removed.
func (s *RepairSet) RepairMany(units ...int) int {
	n := 0
	for _, u := range units {
		if s.Repair(u) {
			n++
		}
	}

	return n
}

// Contains reports whether unit is in repair.
func (s *RepairSet) Contains(unit int) bool {
	if s == nil {
		return false
	}

	_, found := slices.BinarySearch(s.units, unit)

	return found
}

// Units returns a sorted copy of the set.
func (s *RepairSet) Units() []int {
	if s == nil {
		return []int{}
	}

	out := slices.Clone(s.units)
	if out == nil {
		out = []int{}
	}

	return out
}

// Len returns the number of units in repair.
func (s *RepairSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.units)
}

// Available returns the pool units that are not in repair.
func Available(pool []int, repairs *RepairSet) []int {
	out := make([]int, 0, len(pool))
	for _, u := range pool {
		if !repairs.Contains(u) {
			out = append(out, u)
		}
	}

	return out
}
