package model

import (
	"slices"
	"strings"
)

const (
	DefaultFontSize   = 24
	DefaultImageWidth = 450
	DefaultBackground = "#ECE5DD"
	DefaultTextColor  = "#000000"
	DefaultStationHue = "#f8d7da"
	PaletteSize       = 6

	MinFontSize = 14
	MaxFontSize = 40
	MinWidth    = 300
	MaxWidth    = 800
)

// Appearance holds the display preferences used by report renderers.
type Appearance struct {
	// FontSize is the base font size of the report
	FontSize int `json:"font_size" yaml:"font_size"`

	// Width is the report width in pixels; text renderers derive a column count from it
	Width int `json:"width" yaml:"width"`

	// Background is the report background color (#RRGGBB)
	Background string `json:"background" yaml:"background"`

	// TextColor is the foreground color (#RRGGBB)
	TextColor string `json:"text_color" yaml:"text_color"`

	// Palette colors station headers, cycled in assignment order
	Palette []string `json:"palette" yaml:"palette"`
}

// FleetConfig holds the per-user fleet configuration.
type FleetConfig struct {
	// Ranges are the disjoint unit ranges, sorted by Min
	Ranges []Range `json:"ranges"`

	// Stations are the configured station names in display order
	Stations []string `json:"stations"`

	// Appearance holds the report display preferences
	Appearance Appearance `json:"appearance"`
}

// DefaultAppearance returns the appearance used when none is stored.
func DefaultAppearance() Appearance {
	palette := make([]string, PaletteSize)
	for i := range palette {
		palette[i] = DefaultStationHue
	}

	return Appearance{
		FontSize:   DefaultFontSize,
		Width:      DefaultImageWidth,
		Background: DefaultBackground,
		TextColor:  DefaultTextColor,
		Palette:    palette,
	}
}

// DefaultFleetConfig returns a FleetConfig with the defaults a new user starts with.
func DefaultFleetConfig() FleetConfig {
	return FleetConfig{
		Ranges:     []Range{{Min: 1, Max: 500}},
		Stations:   []string{},
		Appearance: DefaultAppearance(),
	}
}

// Normalize fills zero fields with defaults. It is applied once when a
// config is loaded so callers never re-derive defaults per access.
func (c *FleetConfig) Normalize() {
	def := DefaultFleetConfig()

	if c.Ranges == nil {
		c.Ranges = def.Ranges
	}

	if c.Stations == nil {
		c.Stations = def.Stations
	}

	c.Stations = slices.DeleteFunc(c.Stations, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})

	a := &c.Appearance
	if a.FontSize == 0 {
		a.FontSize = def.Appearance.FontSize
	}

	if a.Width == 0 {
		a.Width = def.Appearance.Width
	}

	if a.Background == "" {
		a.Background = def.Appearance.Background
	}

	if a.TextColor == "" {
		a.TextColor = def.Appearance.TextColor
	}

	if len(a.Palette) == 0 {
		a.Palette = def.Appearance.Palette
	}
}

// Clone returns a deep copy of the config.
func (c FleetConfig) Clone() FleetConfig {
	out := c
	out.Ranges = slices.Clone(c.Ranges)
	out.Stations = slices.Clone(c.Stations)
	out.Appearance.Palette = slices.Clone(c.Appearance.Palette)

	return out
}
