package fleet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidTimeWindow = errors.New("invalid time window")
	ErrUnknownStation    = errors.New("unknown station")
	ErrDuplicateStation  = errors.New("station already exists")
	ErrInvalidAppearance = errors.New("invalid appearance")

	// ErrEmptySelection matches any *EmptySelectionError through errors.Is.
	ErrEmptySelection = errors.New("no units selected")
)

// RangeOverlapError is returned when a new range intersects a configured one.
type RangeOverlapError struct {
	New      Range
	Existing Range
}

func (e *RangeOverlapError) Error() string {
	return fmt.Sprintf("range %s overlaps existing range %s", e.New, e.Existing)
}

// StationReason says why a station cannot take a new assignment.
type StationReason int

const (
	StationMissing StationReason = iota
	StationUnknown
	StationOccupied
)

func (r StationReason) String() string {
	switch r {
	case StationMissing:
		return "station_missing"
	case StationUnknown:
		return "station_unknown"
	case StationOccupied:
		return "station_occupied"
	}
	return ""
}

// StationUnavailableError indicates the station cannot receive an assignment for the day.
type StationUnavailableError struct {
	Station string
	Reason  StationReason
}

func (e *StationUnavailableError) Error() string {
	switch e.Reason {
	case StationMissing:
		return "station is required"
	case StationUnknown:
		return fmt.Sprintf("station %q is not configured", e.Station)
	default:
		return fmt.Sprintf("station %q already has an assignment for this day", e.Station)
	}
}

// EmptySelectionError indicates an operation was called without any units.
type EmptySelectionError struct {
	Op string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("%s: units_missing", e.Op)
}

func (e *EmptySelectionError) Is(target error) bool {
	return target == ErrEmptySelection
}

// DuplicateUnitError indicates units already assigned to a station for the day.
type DuplicateUnitError struct {
	Units   []int
	Station string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("units %s already assigned to station %q", joinUnits(e.Units), e.Station)
}

// UnitUnavailableError indicates units outside the pool, in repair, or repeated in one selection.
type UnitUnavailableError struct {
	Units []int
}

func (e *UnitUnavailableError) Error() string {
	return fmt.Sprintf("units %s are not available", joinUnits(e.Units))
}

// UnknownUnitError indicates a unit outside every configured range.
type UnknownUnitError struct {
	Unit int
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unit %d is not part of the fleet", e.Unit)
}

// PersistenceError wraps a store failure. The in-memory state it refers to
// is still valid; it has only not reached durable storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s not persisted: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a caller-correctable validation failure
// as opposed to a persistence failure.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return false
	}

	var (
		overlap   *RangeOverlapError
		station   *StationUnavailableError
		duplicate *DuplicateUnitError
		avail     *UnitUnavailableError
		unknown   *UnknownUnitError
	)

	switch {
	case errors.As(err, &overlap), errors.As(err, &station), errors.As(err, &duplicate),
		errors.As(err, &avail), errors.As(err, &unknown):
		return true
	}

	for _, sentinel := range []error{
		ErrEmptySelection, ErrInvalidRange, ErrIndexOutOfRange, ErrInvalidTimeWindow,
		ErrUnknownStation, ErrDuplicateStation, ErrInvalidAppearance,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}

func joinUnits(units []int) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.Itoa(u)
	}

	return "[" + strings.Join(parts, " ") + "]"
}
