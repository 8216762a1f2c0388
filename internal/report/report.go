// Package report renders a day's assignments for sharing: a terminal text
// report styled with lipgloss and spreadsheet exports built with excelize.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
)

// Renderer turns a read-only day snapshot into a document.
type Renderer interface {
	Render(snap fleet.Snapshot) ([]byte, error)
	ContentType() string
}

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

const (
	TitlePrefix  = "REPORT OF SERVICE STATIONS AND UNITS"
	RangeHeading = "• UNIT RANGE"
	StationLabel = "STATION"
)

// ErrUnknownFormat is returned by ForFormat for unsupported formats.
var ErrUnknownFormat = fmt.Errorf("unknown report format")

// ForFormat returns the renderer for f.
func ForFormat(f Format) (Renderer, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatText, "":
		return NewTextRenderer(), nil
	case FormatXLSX:
		return NewXLSXRenderer(), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}\s.,:;\-()/_]`)

// Sanitize removes characters outside letters, digits, whitespace and .,:;-()/
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}

// Title returns the report title for date, e.g.
// "REPORT OF SERVICE STATIONS AND UNITS MONDAY 06/05/24".
func Title(date time.Time) string {
	return fmt.Sprintf("%s %s %s", TitlePrefix, strings.ToUpper(date.Weekday().String()), date.Format("02/01/06"))
}

// StationHeading returns "• STATION NAME: 9 AM - 2 PM", or without the
// window when none is set.
func StationHeading(a model.Assignment) string {
	name := strings.ToUpper(strings.TrimSpace(Sanitize(a.Station)))

	heading := "• " + StationLabel + " " + name
	if w := Sanitize(a.Window.String()); w != "" {
		heading += ": " + strings.ToUpper(w)
	}

	return heading
}

// UnitList prints units as two-digit zero padded numbers in entry order.
func UnitList(units []int) string {
	parts := make([]string, len(units))
	for i, u := range units {
		if u < 10 {
			parts[i] = "0" + strconv.Itoa(u)
			continue
		}

		parts[i] = strconv.Itoa(u)
	}

	return strings.Join(parts, " ")
}

// PaletteColor returns the palette entry for station i, cycling.
func PaletteColor(a model.Appearance, i int) string {
	if len(a.Palette) == 0 {
		return model.DefaultStationHue
	}

	return a.Palette[i%len(a.Palette)]
}
