package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDefaultFleetConfig(t *testing.T) {
	cfg := DefaultFleetConfig()

	if len(cfg.Ranges) != 1 || cfg.Ranges[0] != (Range{Min: 1, Max: 500}) {
		t.Errorf("Ranges = %v, want [1-500]", cfg.Ranges)
	}

	if len(cfg.Stations) != 0 {
		t.Errorf("Stations = %v, want empty", cfg.Stations)
	}

	if cfg.Appearance.FontSize != 24 {
		t.Errorf("FontSize = %d, want %d", cfg.Appearance.FontSize, 24)
	}

	if cfg.Appearance.Width != 450 {
		t.Errorf("Width = %d, want %d", cfg.Appearance.Width, 450)
	}

	if cfg.Appearance.Background != "#ECE5DD" {
		t.Errorf("Background = %q, want %q", cfg.Appearance.Background, "#ECE5DD")
	}

	if len(cfg.Appearance.Palette) != PaletteSize {
		t.Errorf("len(Palette) = %d, want %d", len(cfg.Appearance.Palette), PaletteSize)
	}
}

func TestFleetConfig_Normalize(t *testing.T) {
	cfg := FleetConfig{
		Stations:   []string{"North", "  ", "South"},
		Appearance: Appearance{FontSize: 30},
	}

	cfg.Normalize()

	if len(cfg.Ranges) != 1 {
		t.Errorf("Ranges = %v, want default range", cfg.Ranges)
	}

	if len(cfg.Stations) != 2 {
		t.Errorf("Stations = %v, want blank entries dropped", cfg.Stations)
	}

	if cfg.Appearance.FontSize != 30 {
		t.Errorf("FontSize = %d, want stored value 30 kept", cfg.Appearance.FontSize)
	}

	if cfg.Appearance.TextColor != DefaultTextColor {
		t.Errorf("TextColor = %q, want default", cfg.Appearance.TextColor)
	}
}

func TestFleetConfig_NormalizeKeepsEmptyRanges(t *testing.T) {
	cfg := FleetConfig{Ranges: []Range{}}
	cfg.Normalize()

	if len(cfg.Ranges) != 0 {
		t.Errorf("Ranges = %v, want explicit empty list kept", cfg.Ranges)
	}
}

func TestFleetConfig_Clone(t *testing.T) {
	orig := DefaultFleetConfig()
	orig.Stations = append(orig.Stations, "North")

	cp := orig.Clone()
	cp.Stations[0] = "changed"
	cp.Ranges[0].Max = 10
	cp.Appearance.Palette[0] = "#000000"

	if orig.Stations[0] != "North" || orig.Ranges[0].Max != 500 || orig.Appearance.Palette[0] != DefaultStationHue {
		t.Error("Clone() shares memory with the original")
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		a, b Range
		want bool
	}{
		{Range{1, 50}, Range{51, 100}, false},
		{Range{1, 50}, Range{50, 100}, true},
		{Range{40, 60}, Range{1, 50}, true},
		{Range{10, 20}, Range{1, 100}, true},
		{Range{101, 200}, Range{1, 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_"+tt.b.String(), func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if (Range{Min: 5, Max: 9}).Len() != 5 {
		t.Error("Len() of 5-9 should be 5")
	}
}

func TestTimeWindow_String(t *testing.T) {
	if got := (TimeWindow{}).String(); got != "" {
		t.Errorf("zero window String() = %q, want empty", got)
	}

	w := TimeWindow{Open: "9 AM", Close: "2 PM"}
	if got := w.String(); got != "9 AM - 2 PM" {
		t.Errorf("String() = %q, want %q", got, "9 AM - 2 PM")
	}
}

func TestDayRecord_JSON(t *testing.T) {
	date, err := ParseDate("2024-05-01")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}

	rec := DayRecord{
		User: "alice",
		Date: date,
		Assignments: []Assignment{
			{ID: "a", Station: "North", Units: []int{3, 1, 2}},
		},
		CreatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got DayRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Key() != "2024-05-01" {
		t.Errorf("Key() = %q, want %q", got.Key(), "2024-05-01")
	}

	if units := got.Assignments[0].Units; units[0] != 3 || units[2] != 2 {
		t.Errorf("Units = %v, want entry order preserved", units)
	}
}

func TestNormalizeUser(t *testing.T) {
	if got := NormalizeUser("  Alice "); got != "alice" {
		t.Errorf("NormalizeUser() = %q, want %q", got, "alice")
	}
}
