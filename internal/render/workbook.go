package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
)

// Workbook sheet names.
const (
	SheetCounties = "Counties"
	SheetGroups   = "Groups"
	SheetPivot    = "Pivot"
)

// Workbook writes the view's county totals, chart groups and pivot table as
// an xlsx workbook with one sheet each.
func Workbook(w io.Writer, v dashboard.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCounties); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	rows := [][]any{{"County", "Pounds", "Tons", "Rank"}}
	for _, c := range v.Counties {
		rows = append(rows, []any{c.Key, c.Pounds, c.Tons, c.Rank})
	}
	rows = append(rows, []any{"Statewide", v.StatewidePounds, v.StatewideTons})
	if err := writeRows(f, SheetCounties, rows); err != nil {
		return err
	}

	rows = [][]any{{v.Chart.Dimension.Label(), "Tons"}}
	for _, b := range v.Chart.Bars {
		rows = append(rows, []any{b.Key, b.Tons})
	}
	if err := writeSheet(f, SheetGroups, rows); err != nil {
		return err
	}

	if v.Pivot != nil {
		header := []any{v.Pivot.Row.Label()}
		for _, c := range v.Pivot.Columns {
			header = append(header, c)
		}
		rows = [][]any{header}
		for _, r := range v.Pivot.Rows {
			row := []any{r.Key}
			for _, val := range r.Values {
				row = append(row, val)
			}
			rows = append(rows, row)
		}
		if err := writeSheet(f, SheetPivot, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
