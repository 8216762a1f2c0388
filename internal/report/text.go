package report

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/fleetroster/internal/fleet"
)

const (
	rangeHeadingColor = "#cff4fc"
	titleFallback     = "#d1e7dd"
	minColumns        = 20
)

// TextRenderer renders the report for a terminal. Colors are dropped when
// the renderer's output does not support them.
type TextRenderer struct {
	r *lipgloss.Renderer
}

// NewTextRenderer returns a renderer using lipgloss' default output.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{r: lipgloss.DefaultRenderer()}
}

// NewTextRendererWith returns a renderer bound to r, e.g. one created with
// lipgloss.NewRenderer for a specific writer.
func NewTextRendererWith(r *lipgloss.Renderer) *TextRenderer {
	return &TextRenderer{r: r}
}

func (t *TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Columns is the wrap width derived from the configured report width.
func Columns(width int) int {
	cols := width / 10
	if cols < minColumns {
		return minColumns
	}

	return cols
}

func (t *TextRenderer) Render(snap fleet.Snapshot) ([]byte, error) {
	a := snap.Appearance
	cols := Columns(a.Width)
	text := lipgloss.Color(a.TextColor)

	titleBg := titleFallback
	if len(a.Palette) > 2 {
		titleBg = a.Palette[2]
	}

	titleStyle := t.r.NewStyle().
		Bold(true).
		Foreground(text).
		Background(lipgloss.Color(titleBg)).
		Width(cols).
		Align(lipgloss.Center)
	bodyStyle := t.r.NewStyle().Foreground(text).Width(cols)
	headingStyle := t.r.NewStyle().Bold(true).Foreground(text).Width(cols)

	var b bytes.Buffer

	b.WriteString(titleStyle.Render(strings.ToUpper(Title(snap.Date))))
	b.WriteString("\n\n")

	for i, rec := range snap.Assignments {
		heading := headingStyle.Background(lipgloss.Color(PaletteColor(a, i)))

		b.WriteString(heading.Render(StationHeading(rec)))
		b.WriteByte('\n')

		if units := UnitList(rec.Units); units != "" {
			b.WriteString(bodyStyle.Render(units))
			b.WriteByte('\n')
		}

		b.WriteByte('\n')
	}

	b.WriteString(headingStyle.Background(lipgloss.Color(rangeHeadingColor)).Render(RangeHeading))
	b.WriteByte('\n')
	b.WriteString(bodyStyle.Render(strings.ToUpper(Sanitize(snap.Caption))))
	b.WriteByte('\n')

	return b.Bytes(), nil
}
