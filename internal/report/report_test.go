package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/inovacc/fleetroster/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var monday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func testSnapshot() fleet.Snapshot {
	return fleet.Snapshot{
		Date:    monday,
		Caption: "1-50 / 51-100",
		Assignments: []model.Assignment{
			{Station: "North", Window: model.TimeWindow{Open: "9 AM", Close: "2 PM"}, Units: []int{3, 1, 12}},
			{Station: "South #2!", Units: []int{7}},
		},
		Appearance: model.DefaultAppearance(),
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"North", "North"},
		{"Estación Ñ", "Estación Ñ"},
		{"South #2!", "South 2"},
		{"a<b>c{d}", "abcd"},
		{"9 AM - 2 PM", "9 AM - 2 PM"},
		{"route (7) / 1.5, ok: yes; no", "route (7) / 1.5, ok: yes; no"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "REPORT OF SERVICE STATIONS AND UNITS MONDAY 06/05/24", Title(monday))
}

func TestStationHeading(t *testing.T) {
	snap := testSnapshot()

	assert.Equal(t, "• STATION NORTH: 9 AM - 2 PM", StationHeading(snap.Assignments[0]))
	assert.Equal(t, "• STATION SOUTH 2", StationHeading(snap.Assignments[1]))
}

func TestUnitList(t *testing.T) {
	assert.Equal(t, "03 01 12 100", UnitList([]int{3, 1, 12, 100}))
	assert.Equal(t, "", UnitList(nil))
}

func TestPaletteColor(t *testing.T) {
	a := model.Appearance{Palette: []string{"#111111", "#222222"}}

	assert.Equal(t, "#111111", PaletteColor(a, 0))
	assert.Equal(t, "#222222", PaletteColor(a, 1))
	assert.Equal(t, "#111111", PaletteColor(a, 2))
	assert.Equal(t, model.DefaultStationHue, PaletteColor(model.Appearance{}, 3))
}

func TestForFormat(t *testing.T) {
	r, err := ForFormat("TEXT")
	require.NoError(t, err)
	assert.IsType(t, &TextRenderer{}, r)

	r, err = ForFormat(FormatXLSX)
	require.NoError(t, err)
	assert.IsType(t, &XLSXRenderer{}, r)

	_, err = ForFormat("png")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestColumns(t *testing.T) {
	assert.Equal(t, 45, Columns(450))
	assert.Equal(t, minColumns, Columns(0))
}

func TestTextRenderer(t *testing.T) {
	r := NewTextRendererWith(lipgloss.NewRenderer(&bytes.Buffer{}))

	out, err := r.Render(testSnapshot())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "MONDAY")
	assert.Contains(t, text, "06/05/24")
	assert.Contains(t, text, "• STATION NORTH: 9 AM - 2 PM")
	assert.Contains(t, text, "03 01 12")
	assert.Contains(t, text, "• STATION SOUTH 2")
	assert.Contains(t, text, RangeHeading)
	assert.Contains(t, text, "1-50 / 51-100")
	assert.NotContains(t, text, "\x1b[", "no escape codes without a terminal")

	north := strings.Index(text, "NORTH")
	south := strings.Index(text, "SOUTH")
	rng := strings.Index(text, RangeHeading)
	assert.True(t, north < south && south < rng, "stations in ledger order, range last")
}

func TestTextRenderer_Wraps(t *testing.T) {
	snap := testSnapshot()
	snap.Appearance.Width = 300

	units := make([]int, 0, 40)
	for u := 10; u < 50; u++ {
		units = append(units, u)
	}

	snap.Assignments = []model.Assignment{{Station: "North", Units: units}}

	out, err := NewTextRendererWith(lipgloss.NewRenderer(&bytes.Buffer{})).Render(snap)
	require.NoError(t, err)

	for _, line := range strings.Split(string(out), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), Columns(300))
	}
}

func TestXLSXRenderer(t *testing.T) {
	out, err := NewXLSXRenderer().Render(testSnapshot())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{reportSheet}, f.GetSheetList())

	cell := func(ref string) string {
		v, err := f.GetCellValue(reportSheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "REPORT OF SERVICE STATIONS AND UNITS MONDAY 06/05/24", cell("A1"))
	assert.Equal(t, "• STATION NORTH: 9 AM - 2 PM", cell("A3"))
	assert.Equal(t, "03 01 12", cell("A4"))
	assert.Equal(t, "• STATION SOUTH 2", cell("A6"))
	assert.Equal(t, "07", cell("A7"))
	assert.Equal(t, RangeHeading, cell("A9"))
	assert.Equal(t, "1-50 / 51-100", cell("A10"))
}

func TestHistoryWorkbook(t *testing.T) {
	created := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

	days := []model.DayRecord{
		{
			User: "maria",
			Date: monday,
			Assignments: []model.Assignment{
				{Station: "North", Window: model.TimeWindow{Open: "9 AM", Close: "2 PM"}, Units: []int{1, 2}},
				{Station: "South", Units: []int{5}},
			},
			Caption:   "1-500",
			CreatedAt: created,
			UpdatedAt: created,
		},
		{User: "maria", Date: monday.AddDate(0, 0, 1)},
	}

	out, err := HistoryWorkbook(days)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, HistoryHeader, rows[0])
	assert.Equal(t, []string{"2024-05-06", "maria", "North", "9 AM - 2 PM", "01 02", "2", "1-500", "2024-05-06 08:00", "2024-05-06 08:00"}, rows[1])
	assert.Equal(t, "South", rows[2][2])
	assert.Equal(t, "2024-05-07", rows[3][0])
}
