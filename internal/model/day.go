package model

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the layout used for day keys in stores and URLs.
const DateLayout = "2006-01-02"

// TimeWindow is a station's opening hours for the day. The zero value means
// no specific hours.
type TimeWindow struct {
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

// IsZero reports whether the window carries no hours.
func (w TimeWindow) IsZero() bool {
	return w.Open == "" && w.Close == ""
}

func (w TimeWindow) String() string {
	if w.IsZero() {
		return ""
	}

	return w.Open + " - " + w.Close
}

// Assignment is one station's allocation of units for a day.
type Assignment struct {
	// ID is a stable identifier for the record
	ID string `json:"id"`

	// Station is the configured station name
	Station string `json:"station"`

	// Window is the optional opening window
	Window TimeWindow `json:"window"`

	// Units are kept in the order they were entered
	Units []int `json:"units"`
}

// Clone returns a deep copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := a
	out.Units = slices.Clone(a.Units)
	if out.Units == nil {
		out.Units = []int{}
	}

	return out
}

// DayRecord is the persisted ledger for one user and date.
type DayRecord struct {
	User        string       `json:"user"`
	Date        time.Time    `json:"date"`
	Assignments []Assignment `json:"assignments"`
	Caption     string       `json:"caption,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Key returns the date key of the record.
func (d DayRecord) Key() string {
	return DateKey(d.Date)
}

// DateKey formats t as a day key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a day key into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Day truncates t to its calendar date at midnight UTC, keeping the local date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeUser trims and lower-cases a user name so that every store keys
// the same account identically.
func NormalizeUser(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}

// Stamp fills CreatedAt on first save and refreshes UpdatedAt unless the
// caller already set a newer one. Stores call it right before writing.
func (d *DayRecord) Stamp(now time.Time) {
	now = now.UTC().Truncate(time.Second)

	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}

	if d.UpdatedAt.IsZero() || d.UpdatedAt.Before(d.CreatedAt) {
		d.UpdatedAt = now
	}

	if d.Assignments == nil {
		d.Assignments = []Assignment{}
	}
}
