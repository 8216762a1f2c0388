package fleet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/inovacc/fleetroster/internal/model"
)

// UnitState is the derived state of a unit for one day.
type UnitState int

const (
	UnitUnknown UnitState = iota
	UnitFree
	UnitInRepair
	UnitAssigned
)

func (s UnitState) String() string {
	switch s {
	case UnitFree:
		return "free"
	case UnitInRepair:
		return "in_repair"
	case UnitAssigned:
		return "assigned"
	}
	return "unknown"
}

// Counts summarises the partition of the pool for one day.
type Counts struct {
	Total    int `json:"total"`
	InRepair int `json:"in_repair"`
	Assigned int `json:"assigned"`
	Free     int `json:"free"`
}

// Ledger is the ordered list of station assignments for one day.
type Ledger struct {
	pool     Pool
	repairs  *RepairSet
	stations []string
	records  []model.Assignment
	newID    func() string
}

// NewLedger builds a ledger over pool and repairs, seeded with records loaded
// from storage. The repair set is shared, so repairs reported after the
// ledger is built are reflected immediately.
func NewLedger(pool Pool, repairs *RepairSet, records []model.Assignment) *Ledger {
	if repairs == nil {
		repairs = NewRepairSet()
	}

	l := &Ledger{
		pool:    pool,
		repairs: repairs,
		newID:   func() string { return uuid.New().String() },
	}

	for _, rec := range records {
		rec = rec.Clone()
		if rec.ID == "" {
			rec.ID = l.newID()
		}

		l.records = append(l.records, rec)
	}

	return l
}

// SetStations restricts new assignments to the configured station names.
// A nil list disables the check.
func (l *Ledger) SetStations(stations []string) {
	if stations == nil {
		l.stations = nil
		return
	}

	l.stations = slices.Clone(stations)
}

// SetPool swaps the unit pool, e.g. after a range was added or removed.
func (l *Ledger) SetPool(pool Pool) {
	l.pool = pool
}

// Pool returns the unit pool the ledger validates against.
func (l *Ledger) Pool() Pool {
	return l.pool
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a deep copy of the records in order.
func (l *Ledger) Records() []model.Assignment {
	out := make([]model.Assignment, len(l.records))
	for i, rec := range l.records {
		out[i] = rec.Clone()
	}

	return out
}

// Record returns a copy of the record at index.
func (l *Ledger) Record(index int) (model.Assignment, error) {
	if err := l.checkIndex(index); err != nil {
		return model.Assignment{}, err
	}

	return l.records[index].Clone(), nil
}

// IndexOf returns the index of the record with the given ID, or -1.
func (l *Ledger) IndexOf(id string) int {
	return slices.IndexFunc(l.records, func(a model.Assignment) bool {
		return a.ID == id
	})
}

// CreateAssignment appends a new record for station. Units keep the given order.
func (l *Ledger) CreateAssignment(station string, window model.TimeWindow, units []int) (model.Assignment, error) {
	station = strings.TrimSpace(station)
	if station == "" {
		return model.Assignment{}, &StationUnavailableError{Reason: StationMissing}
	}

	if l.stations != nil {
		i := slices.IndexFunc(l.stations, func(v string) bool {
			return strings.EqualFold(strings.TrimSpace(v), station)
		})
		if i < 0 {
			return model.Assignment{}, &StationUnavailableError{Station: station, Reason: StationUnknown}
		}

		// Records carry the configured spelling.
		station = strings.TrimSpace(l.stations[i])
	}

	if l.hasStation(station) {
		return model.Assignment{}, &StationUnavailableError{Station: station, Reason: StationOccupied}
	}

	window, err := CanonicalWindow(window)
	if err != nil {
		return model.Assignment{}, err
	}

	if len(units) == 0 {
		return model.Assignment{}, &EmptySelectionError{Op: "create assignment"}
	}

	if err := l.checkCandidates(units); err != nil {
		return model.Assignment{}, err
	}

	rec := model.Assignment{
		ID:      l.newID(),
		Station: station,
		Window:  window,
		Units:   slices.Clone(units),
	}

	l.records = append(l.records, rec)

	return rec.Clone(), nil
}

// AddUnits appends units to the record at index.
func (l *Ledger) AddUnits(index int, units []int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}

	if len(units) == 0 {
		return &EmptySelectionError{Op: "add units"}
	}

	if err := l.checkCandidates(units); err != nil {
		return err
	}

	l.records[index].Units = append(l.records[index].Units, units...)

	return nil
}

// RemoveUnits removes the given units from the record at index. Units not in
// the record are ignored and an emptied record is kept. It returns the number
// of units removed.
func (l *Ledger) RemoveUnits(index int, units []int) (int, error) {
	if err := l.checkIndex(index); err != nil {
		return 0, err
	}

	drop := make(map[int]struct{}, len(units))
	for _, u := range units {
		drop[u] = struct{}{}
	}

	rec := &l.records[index]
	before := len(rec.Units)

	rec.Units = slices.DeleteFunc(rec.Units, func(u int) bool {
		_, ok := drop[u]
		return ok
	})

	return before - len(rec.Units), nil
}

// DeleteAssignment removes the record at index; its units become free.
func (l *Ledger) DeleteAssignment(index int) (model.Assignment, error) {
	if err := l.checkIndex(index); err != nil {
		return model.Assignment{}, err
	}

	removed := l.records[index]
	l.records = slices.Delete(l.records, index, index+1)

	return removed, nil
}

// EditTimeWindow replaces the window of the record at index.
func (l *Ledger) EditTimeWindow(index int, window model.TimeWindow) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}

	window, err := CanonicalWindow(window)
	if err != nil {
		return err
	}

	l.records[index].Window = window

	return nil
}

// Assigned maps every assigned unit to the index of its record.
func (l *Ledger) Assigned() map[int]int {
	out := make(map[int]int)
	for i, rec := range l.records {
		for _, u := range rec.Units {
			out[u] = i
		}
	}

	return out
}

// Available returns the Available Pool: pool units neither in repair nor
// assigned today, ascending. It is recomputed on every call.
func (l *Ledger) Available() []int {
	assigned := l.Assigned()
	out := make([]int, 0, l.pool.Len())

	for _, u := range l.pool.units {
		if l.repairs.Contains(u) {
			continue
		}

		if _, ok := assigned[u]; ok {
			continue
		}

		out = append(out, u)
	}

	return out
}

// State returns the derived state of unit. Units outside the pool are UnitUnknown.
func (l *Ledger) State(unit int) UnitState {
	if !l.pool.Contains(unit) {
		return UnitUnknown
	}

	if l.repairs.Contains(unit) {
		return UnitInRepair
	}

	for _, rec := range l.records {
		if slices.Contains(rec.Units, unit) {
			return UnitAssigned
		}
	}

	return UnitFree
}

// Counts returns the partition sizes of the pool for the day.
func (l *Ledger) Counts() Counts {
	assigned := l.Assigned()
	c := Counts{Total: l.pool.Len()}

	for _, u := range l.pool.units {
		switch {
		case l.repairs.Contains(u):
			c.InRepair++
		case hasKey(assigned, u):
			c.Assigned++
		default:
			c.Free++
		}
	}

	return c
}

// AvailableStations returns the configured stations that have no record yet,
// in configured order.
func (l *Ledger) AvailableStations(configured []string) []string {
	out := make([]string, 0, len(configured))
	for _, s := range configured {
		if !l.hasStation(s) {
			out = append(out, s)
		}
	}

	return out
}

// checkCandidates validates units for insertion into any record. Units
// already listed anywhere in the day, including the target record, are duplicates.
func (l *Ledger) checkCandidates(units []int) error {
	assigned := l.Assigned()

	var (
		dupUnits   []int
		dupStation string
	)

	for _, u := range units {
		idx, ok := assigned[u]
		if !ok {
			continue
		}

		if dupStation == "" {
			dupStation = l.records[idx].Station
		}

		dupUnits = append(dupUnits, u)
	}

	if len(dupUnits) > 0 {
		return &DuplicateUnitError{Units: dupUnits, Station: dupStation}
	}

	seen := make(map[int]struct{}, len(units))

	var unavailable []int

	for _, u := range units {
		_, repeated := seen[u]
		seen[u] = struct{}{}

		if repeated || !l.pool.Contains(u) || l.repairs.Contains(u) {
			unavailable = append(unavailable, u)
		}
	}

	if len(unavailable) > 0 {
		return &UnitUnavailableError{Units: unavailable}
	}

	return nil
}

func (l *Ledger) checkIndex(index int) error {
	if index < 0 || index >= len(l.records) {
		return fmt.Errorf("assignment %d: %w", index, ErrIndexOutOfRange)
	}

	return nil
}

func (l *Ledger) hasStation(station string) bool {
	return slices.ContainsFunc(l.records, func(a model.Assignment) bool {
		return strings.EqualFold(a.Station, strings.TrimSpace(station))
	})
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), s)
	})
}

func hasKey(m map[int]int, k int) bool {
	_, ok := m[k]
	return ok
}
