package web

import (
	"errors"
	"net/http"

	"github.com/inovacc/fleetroster/internal/fleet"
)

// Error codes returned in APIResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeInvalidDate       = "invalid_date"
	CodeInvalidRange      = "invalid_range"
	CodeRangeOverlap      = "range_overlap"
	CodeIndexOutOfRange   = "index_out_of_range"
	CodeInvalidTimeWindow = "invalid_time_window"
	CodeDuplicateStation  = "duplicate_station"
	CodeDuplicateUnit     = "duplicate_unit"
	CodeUnitUnavailable   = "unit_unavailable"
	CodeUnknownUnit       = "unknown_unit"
	CodeUnitsMissing      = "units_missing"
	CodeInvalidAppearance = "invalid_appearance"
	CodePersistence       = "persistence_failed"
	CodeInternal          = "internal"
	CodeUnavailable       = "unavailable"
)

// classify maps a domain error to an HTTP status and error code.
func classify(err error) (int, string) {
	var (
		persist   *fleet.PersistenceError
		overlap   *fleet.RangeOverlapError
		station   *fleet.StationUnavailableError
		duplicate *fleet.DuplicateUnitError
		avail     *fleet.UnitUnavailableError
		unknown   *fleet.UnknownUnitError
	)

	switch {
	case errors.As(err, &persist):
		return http.StatusServiceUnavailable, CodePersistence
	case errors.As(err, &overlap):
		return http.StatusConflict, CodeRangeOverlap
	case errors.As(err, &station):
		if station.Reason == fleet.StationOccupied {
			return http.StatusConflict, station.Reason.String()
		}
		return http.StatusBadRequest, station.Reason.String()
	case errors.As(err, &duplicate):
		return http.StatusConflict, CodeDuplicateUnit
	case errors.As(err, &avail):
		return http.StatusConflict, CodeUnitUnavailable
	case errors.As(err, &unknown):
		return http.StatusBadRequest, CodeUnknownUnit
	case errors.Is(err, fleet.ErrEmptySelection):
		return http.StatusBadRequest, CodeUnitsMissing
	case errors.Is(err, fleet.ErrDuplicateStation):
		return http.StatusConflict, CodeDuplicateStation
	case errors.Is(err, fleet.ErrInvalidRange):
		return http.StatusBadRequest, CodeInvalidRange
	case errors.Is(err, fleet.ErrIndexOutOfRange):
		return http.StatusBadRequest, CodeIndexOutOfRange
	case errors.Is(err, fleet.ErrInvalidTimeWindow):
		return http.StatusBadRequest, CodeInvalidTimeWindow
	case errors.Is(err, fleet.ErrInvalidAppearance):
		return http.StatusBadRequest, CodeInvalidAppearance
	}

	return http.StatusInternalServerError, CodeInternal
}
