package fleet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inovacc/fleetroster/internal/model"
)

// HourLabels are the 24 hour-of-day labels a time window may use, from
// "12 AM" to "11 PM".
var HourLabels = buildHourLabels()

func buildHourLabels() [24]string {
	var labels [24]string

	for h := range 24 {
		hour12 := h % 12
		if hour12 == 0 {
			hour12 = 12
		}

		suffix := "AM"
		if h >= 12 {
			suffix = "PM"
		}

		labels[h] = strconv.Itoa(hour12) + " " + suffix
	}

	return labels
}

// HourIndex returns the hour of day for label, or -1.
func HourIndex(label string) int {
	for i, l := range HourLabels {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return i
		}
	}

	return -1
}

// ValidateWindow accepts the empty window or a window whose bounds are both hour labels.
func ValidateWindow(w model.TimeWindow) error {
	if w.IsZero() {
		return nil
	}

	if HourIndex(w.Open) < 0 || HourIndex(w.Close) < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidTimeWindow, w.String())
	}

	return nil
}

// CanonicalWindow validates w and returns it with both labels in their
// canonical spelling. The empty window is returned unchanged.
func CanonicalWindow(w model.TimeWindow) (model.TimeWindow, error) {
	if w.IsZero() {
		return w, nil
	}

	if err := ValidateWindow(w); err != nil {
		return model.TimeWindow{}, err
	}

	return model.TimeWindow{Open: HourLabels[HourIndex(w.Open)], Close: HourLabels[HourIndex(w.Close)]}, nil
}

// NewWindow builds a window from two labels, canonicalising their spelling.
func NewWindow(openLabel, closeLabel string) (model.TimeWindow, error) {
	o, c := HourIndex(openLabel), HourIndex(closeLabel)
	if o < 0 || c < 0 {
		return model.TimeWindow{}, fmt.Errorf("%w: %q to %q", ErrInvalidTimeWindow, openLabel, closeLabel)
	}

	return model.TimeWindow{Open: HourLabels[o], Close: HourLabels[c]}, nil
}

// ParseWindow parses "9 AM - 2 PM". The empty string yields the empty window.
func ParseWindow(s string) (model.TimeWindow, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.TimeWindow{}, nil
	}

	openLabel, closeLabel, ok := strings.Cut(s, "-")
	if !ok {
		return model.TimeWindow{}, fmt.Errorf("%w: %q", ErrInvalidTimeWindow, s)
	}

	return NewWindow(openLabel, closeLabel)
}
