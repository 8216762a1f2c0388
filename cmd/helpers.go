package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
)

var errNoUnits = errors.New("no units given")

// parseUnits reads unit numbers from args. Each argument may hold several
// units separated by commas, and "a-b" expands to every unit from a to b.
func parseUnits(args []string) ([]int, error) {
	var units []int

	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			lo, hi, isSpan := strings.Cut(field, "-")

			a, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid unit %q", field)
			}

			if !isSpan {
				units = append(units, a)
				continue
			}

			b, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || b < a {
				return nil, fmt.Errorf("invalid unit span %q", field)
			}

			if b-a >= fleet.MaxRangeSpan {
				return nil, fmt.Errorf("unit span %q is larger than %d units", field, fleet.MaxRangeSpan)
			}

			for u := a; u <= b; u++ {
				units = append(units, u)
			}
		}
	}

	if len(units) == 0 {
		return nil, errNoUnits
	}

	return units, nil
}

// parseDay parses a YYYY-MM-DD flag value; the empty string means today.
func parseDay(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return model.Day(time.Now()), nil
	}

	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	return d, nil
}

// parseIndex parses a 1-based position as shown by the list commands.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q, expected a number from 1", s)
	}

	return n - 1, nil
}

func formatUnits(units []int) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.Itoa(u)
	}

	return strings.Join(parts, " ")
}

func formatGroups(units []int) string {
	var b strings.Builder

	for _, g := range fleet.GroupByHundred(units) {
		_, _ = fmt.Fprintf(&b, "  %-9s %s\n", g.Label, formatUnits(g.Units))
	}

	return b.String()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
