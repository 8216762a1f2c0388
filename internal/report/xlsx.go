package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/inovacc/fleetroster/internal/fleet"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet = "Report"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// XLSXRenderer renders the report as a one-sheet workbook: a title row,
// then one colored heading row and one units row per station, then the
// unit range caption.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (x *XLSXRenderer) ContentType() string {
	return xlsxType
}

func (x *XLSXRenderer) Render(snap fleet.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	a := snap.Appearance
	size := float64(a.FontSize)
	textColor := strings.TrimPrefix(a.TextColor, "#")

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: size + 4, Color: textColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{a.Background}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: size, Color: textColor},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create body style: %w", err)
	}

	// Width is in pixels; excelize column width is roughly characters.
	if err := f.SetColWidth(reportSheet, "A", "A", float64(Columns(a.Width))*1.2); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	row := 1

	if err := writeStyled(f, row, strings.ToUpper(Title(snap.Date)), titleStyle); err != nil {
		f.Close()
		return nil, err
	}

	row += 2

	headingStyles := make(map[string]int)

	headingFor := func(color string) (int, error) {
		if id, ok := headingStyles[color]; ok {
			return id, nil
		}

		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: size, Color: textColor},
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create heading style: %w", err)
		}

		headingStyles[color] = id

		return id, nil
	}

	for i, rec := range snap.Assignments {
		style, err := headingFor(PaletteColor(a, i))
		if err != nil {
			f.Close()
			return nil, err
		}

		if err := writeStyled(f, row, StationHeading(rec), style); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeStyled(f, row+1, UnitList(rec.Units), bodyStyle); err != nil {
			f.Close()
			return nil, err
		}

		row += 3
	}

	rangeStyle, err := headingFor(rangeHeadingColor)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeStyled(f, row, RangeHeading, rangeStyle); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeStyled(f, row+1, strings.ToUpper(Sanitize(snap.Caption)), bodyStyle); err != nil {
		f.Close()
		return nil, err
	}

	return finish(f)
}

func writeStyled(f *excelize.File, row int, value string, style int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}

	if err := f.SetCellValue(reportSheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}

	if err := f.SetCellStyle(reportSheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to set style on %s: %w", cell, err)
	}

	return nil
}

// finish writes the workbook to memory and closes it.
func finish(f *excelize.File) ([]byte, error) {
	// File must remain open during Write operation
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
