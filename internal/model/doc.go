// Package model defines the records shared by the roster core, the stores and
// the HTTP layer.
//
// # Fleet configuration
//
// [FleetConfig] is the per-user configuration: the unit ranges, the station
// names and the report [Appearance]. [DefaultFleetConfig] returns the values
// used when nothing has been saved yet, and [FleetConfig.Normalize] applies
// those defaults to a partially filled record.
//
// # Day records
//
// [DayRecord] is the persisted form of one day's ledger:
//
//	type DayRecord struct {
//	    User        string       // normalised user name
//	    Date        time.Time    // calendar day, midnight UTC
//	    Assignments []Assignment // station assignments in entry order
//	    Caption     string       // free text printed under the report
//	    CreatedAt   time.Time    // first save, preserved on overwrite
//	    UpdatedAt   time.Time    // last save
//	}
package model
