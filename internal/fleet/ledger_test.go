package fleet

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, repairs ...int) *Ledger {
	t.Helper()

	l := NewLedger(NewPool([]Range{{Min: 1, Max: 20}}), NewRepairSet(repairs...), nil)

	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}

	return l
}

func assertNoDuplicates(t *testing.T, l *Ledger) {
	t.Helper()

	seen := map[int]string{}
	for _, rec := range l.Records() {
		for _, u := range rec.Units {
			if other, ok := seen[u]; ok {
				t.Fatalf("unit %d assigned to both %q and %q", u, other, rec.Station)
			}
			seen[u] = rec.Station
		}
	}
}

func TestLedger_CreateAssignment(t *testing.T) {
	l := newTestLedger(t)

	rec, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, []int{3, 1, 2}, rec.Units, "units keep entry order")
	assert.Equal(t, 1, l.Len())
}

func TestLedger_StationUnavailable(t *testing.T) {
	// A station can hold only one record per day, whatever its case.
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 2, 3})
	require.NoError(t, err)

	_, err = l.CreateAssignment("station a ", model.TimeWindow{}, []int{4, 5})

	var se *StationUnavailableError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StationOccupied, se.Reason)

	require.Equal(t, 1, l.Len())
	rec, _ := l.Record(0)
	assert.Equal(t, []int{1, 2, 3}, rec.Units)
}

func TestLedger_StationMissingAndUnknown(t *testing.T) {
	l := newTestLedger(t)
	l.SetStations([]string{"North", "South"})

	_, err := l.CreateAssignment("  ", model.TimeWindow{}, []int{1})

	var se *StationUnavailableError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StationMissing, se.Reason)
	assert.Equal(t, "station_missing", se.Reason.String())

	_, err = l.CreateAssignment("East", model.TimeWindow{}, []int{1})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StationUnknown, se.Reason)

	rec, err := l.CreateAssignment(" nORTH", model.TimeWindow{}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, "North", rec.Station, "record keeps the configured spelling")

	stored, _ := l.Record(0)
	assert.Equal(t, "North", stored.Station)
}

func TestLedger_DuplicateUnit(t *testing.T) {
	// A unit already assigned elsewhere blocks the whole new record.
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 2, 3})
	require.NoError(t, err)

	_, err = l.CreateAssignment("Station B", model.TimeWindow{}, []int{3, 4})

	var de *DuplicateUnitError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []int{3}, de.Units)
	assert.Equal(t, "Station A", de.Station)

	assert.Equal(t, 1, l.Len(), "no Station B record created")
	rec, _ := l.Record(0)
	assert.Equal(t, []int{1, 2, 3}, rec.Units)
	assertNoDuplicates(t, l)
}

func TestLedger_AllOrNothing(t *testing.T) {
	l := newTestLedger(t, 9)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 2})
	require.NoError(t, err)

	before := l.Records()

	failures := []struct {
		name  string
		call  func() error
		check func(error) bool
	}{
		{
			name: "empty selection",
			call: func() error {
				_, err := l.CreateAssignment("Station B", model.TimeWindow{}, nil)
				return err
			},
			check: func(err error) bool { return errors.Is(err, ErrEmptySelection) },
		},
		{
			name: "unit in repair",
			call: func() error {
				_, err := l.CreateAssignment("Station B", model.TimeWindow{}, []int{5, 9})
				return err
			},
			check: func(err error) bool { var e *UnitUnavailableError; return errors.As(err, &e) },
		},
		{
			name: "unit outside pool",
			call: func() error {
				_, err := l.CreateAssignment("Station B", model.TimeWindow{}, []int{5, 21})
				return err
			},
			check: func(err error) bool { var e *UnitUnavailableError; return errors.As(err, &e) },
		},
		{
			name: "unit repeated in selection",
			call: func() error {
				_, err := l.CreateAssignment("Station B", model.TimeWindow{}, []int{5, 5})
				return err
			},
			check: func(err error) bool { var e *UnitUnavailableError; return errors.As(err, &e) },
		},
		{
			name: "bad window",
			call: func() error {
				_, err := l.CreateAssignment("Station B", model.TimeWindow{Open: "25 AM", Close: "1 PM"}, []int{5})
				return err
			},
			check: func(err error) bool { return errors.Is(err, ErrInvalidTimeWindow) },
		},
		{
			name:  "add units empty",
			call:  func() error { return l.AddUnits(0, nil) },
			check: func(err error) bool { return errors.Is(err, ErrEmptySelection) },
		},
		{
			name:  "add units partly duplicate",
			call:  func() error { return l.AddUnits(0, []int{6, 2}) },
			check: func(err error) bool { var e *DuplicateUnitError; return errors.As(err, &e) },
		},
		{
			name:  "add units bad index",
			call:  func() error { return l.AddUnits(4, []int{6}) },
			check: func(err error) bool { return errors.Is(err, ErrIndexOutOfRange) },
		},
	}

	for _, f := range failures {
		t.Run(f.name, func(t *testing.T) {
			err := f.call()
			require.Error(t, err)
			assert.True(t, f.check(err), "unexpected error %v", err)
			assert.True(t, IsValidation(err))

			if diff := cmp.Diff(before, l.Records()); diff != "" {
				t.Errorf("ledger changed after failure (-before +after):\n%s", diff)
			}
		})
	}
}

func TestLedger_AddUnits(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{5, 1})
	require.NoError(t, err)
	_, err = l.CreateAssignment("Station B", model.TimeWindow{}, []int{2})
	require.NoError(t, err)

	require.NoError(t, l.AddUnits(0, []int{9, 3}))

	rec, _ := l.Record(0)
	assert.Equal(t, []int{5, 1, 9, 3}, rec.Units, "appended without sorting")

	err = l.AddUnits(0, []int{2})

	var de *DuplicateUnitError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Station B", de.Station)

	err = l.AddUnits(0, []int{5})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Station A", de.Station)

	assertNoDuplicates(t, l)
}

func TestLedger_RemoveUnits(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{4, 1, 2})
	require.NoError(t, err)

	n, err := l.RemoveUnits(0, []int{1, 17})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = l.RemoveUnits(0, []int{1})
	require.NoError(t, err)
	assert.Zero(t, n, "removing an absent unit is a no-op")

	n, err = l.RemoveUnits(0, []int{4, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Equal(t, 1, l.Len(), "emptied record is kept")
	rec, _ := l.Record(0)
	assert.Empty(t, rec.Units)

	assert.Contains(t, l.Available(), 1)
	assert.Contains(t, l.Available(), 4)
}

func TestLedger_DeleteAssignment(t *testing.T) {
	// Deleting a record frees its units but not the ones in repair.
	l := newTestLedger(t, 3)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 2, 4})
	require.NoError(t, err)
	assert.NotContains(t, l.Available(), 1)

	removed, err := l.DeleteAssignment(0)
	require.NoError(t, err)
	assert.Equal(t, "Station A", removed.Station)
	assert.Zero(t, l.Len())

	avail := l.Available()
	for _, u := range []int{1, 2, 4} {
		assert.Contains(t, avail, u)
	}
	assert.NotContains(t, avail, 3, "repair set still excludes unit 3")

	_, err = l.DeleteAssignment(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestLedger_EditTimeWindow(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{Open: "9 AM", Close: "2 PM"}, []int{1})
	require.NoError(t, err)

	require.NoError(t, l.EditTimeWindow(0, model.TimeWindow{}))
	rec, _ := l.Record(0)
	assert.True(t, rec.Window.IsZero())

	require.NoError(t, l.EditTimeWindow(0, model.TimeWindow{Open: "6 AM", Close: "6 PM"}))

	err = l.EditTimeWindow(0, model.TimeWindow{Open: "noon", Close: "6 PM"})
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	rec, _ = l.Record(0)
	assert.Equal(t, "6 AM - 6 PM", rec.Window.String())

	require.NoError(t, l.EditTimeWindow(0, model.TimeWindow{Open: " 9 am", Close: "2 pm"}))
	rec, _ = l.Record(0)
	assert.Equal(t, model.TimeWindow{Open: "9 AM", Close: "2 PM"}, rec.Window)

	created, err := l.CreateAssignment("Station B", model.TimeWindow{Open: "12 am", Close: "11 pm"}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, model.TimeWindow{Open: "12 AM", Close: "11 PM"}, created.Window)
}

func TestLedger_Partition(t *testing.T) {
	l := newTestLedger(t, 2, 7)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 3})
	require.NoError(t, err)
	_, err = l.CreateAssignment("Station B", model.TimeWindow{}, []int{4})
	require.NoError(t, err)

	// Reported after assignment: in repair wins.
	l.repairs.Report(4)

	counts := Counts{}
	for _, u := range l.Pool().Units() {
		switch l.State(u) {
		case UnitFree:
			counts.Free++
		case UnitInRepair:
			counts.InRepair++
		case UnitAssigned:
			counts.Assigned++
		default:
			t.Fatalf("unit %d has no state", u)
		}
	}

	counts.Total = l.Pool().Len()
	assert.Equal(t, l.Counts(), counts)
	assert.Equal(t, Counts{Total: 20, InRepair: 3, Assigned: 2, Free: 15}, counts)
	assert.Equal(t, UnitUnknown, l.State(99))
	assert.Len(t, l.Available(), counts.Free)
}

func TestLedger_AvailableStations(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateAssignment("South", model.TimeWindow{}, []int{1})
	require.NoError(t, err)

	got := l.AvailableStations([]string{"North", "South", "East"})
	assert.Equal(t, []string{"North", "East"}, got)
}

func TestLedger_RecordsAreCopies(t *testing.T) {
	l := newTestLedger(t)

	_, err := l.CreateAssignment("Station A", model.TimeWindow{}, []int{1, 2})
	require.NoError(t, err)

	recs := l.Records()
	recs[0].Units[0] = 99
	recs[0].Station = "changed"

	rec, _ := l.Record(0)
	assert.Equal(t, []int{1, 2}, rec.Units)
	assert.Equal(t, "Station A", rec.Station)
}

func TestNewLedger_LoadedRecordsKeepIDs(t *testing.T) {
	loaded := []model.Assignment{
		{ID: "keep", Station: "A", Units: []int{1}},
		{Station: "B", Units: []int{2}},
	}

	l := NewLedger(NewPool([]Range{{Min: 1, Max: 5}}), nil, loaded)

	recs := l.Records()
	assert.Equal(t, "keep", recs[0].ID)
	assert.NotEmpty(t, recs[1].ID)
	assert.Equal(t, 1, l.IndexOf(recs[1].ID))
	assert.Equal(t, -1, l.IndexOf("missing"))
}
