package report

import (
	"fmt"
	"time"

	"github.com/inovacc/fleetroster/internal/model"
	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

// HistoryHeader lists the columns of the history export.
var HistoryHeader = []string{"Date", "User", "Station", "Hours", "Units", "Count", "Caption", "Created", "Updated"}

var historyWidths = []float64{12, 14, 24, 16, 40, 8, 30, 20, 20}

// HistoryWorkbook exports saved days as one row per assignment. A day saved
// without assignments still gets one row so it shows in the export.
func HistoryWorkbook(days []model.DayRecord) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(historySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range HistoryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}

		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}

		if err := f.SetCellStyle(historySheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}

		if err := f.SetColWidth(historySheet, name, name, historyWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	row := 2

	for _, day := range days {
		assignments := day.Assignments
		if len(assignments) == 0 {
			assignments = []model.Assignment{{}}
		}

		for _, a := range assignments {
			values := []any{
				day.Key(),
				day.User,
				a.Station,
				a.Window.String(),
				UnitList(a.Units),
				len(a.Units),
				day.Caption,
				formatStamp(day.CreatedAt),
				formatStamp(day.UpdatedAt),
			}

			for col, v := range values {
				if err := setCellValue(f, historySheet, col+1, row, v); err != nil {
					f.Close()
					return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
				}
			}

			row++
		}
	}

	if err := f.SetPanes(historySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	return finish(f)
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	return f.SetCellValue(sheet, cell, value)
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format("2006-01-02 15:04")
}
