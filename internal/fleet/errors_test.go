package fleet

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&RangeOverlapError{New: Range{Min: 40, Max: 60}, Existing: Range{Min: 1, Max: 50}}, "range 40-60 overlaps existing range 1-50"},
		{&StationUnavailableError{Reason: StationMissing}, "station is required"},
		{&StationUnavailableError{Station: "A", Reason: StationOccupied}, `station "A" already has an assignment for this day`},
		{&EmptySelectionError{Op: "add units"}, "add units: units_missing"},
		{&DuplicateUnitError{Units: []int{3, 4}, Station: "A"}, `units [3 4] already assigned to station "A"`},
		{&UnitUnavailableError{Units: []int{9}}, "units [9] are not available"},
		{&UnknownUnitError{Unit: 900}, "unit 900 is not part of the fleet"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped sentinel", fmt.Errorf("ctx: %w", ErrInvalidRange), true},
		{"empty selection", &EmptySelectionError{Op: "x"}, true},
		{"duplicate", &DuplicateUnitError{}, true},
		{"persistence", &PersistenceError{Op: "save", Err: ErrInvalidRange}, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&PersistenceError{Op: "save day 2024-05-06", Err: cause})

	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}

	if err.Error() != "save day 2024-05-06 not persisted: disk full" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
