package domain

import (
	"fmt"
	"slices"
)

// DefaultPivotSelection is how many column values are preselected when the
// caller chooses none.
const DefaultPivotSelection = 3

// pivotColumns lists, per row dimension, the column dimensions it can be
// profiled against.
var pivotColumns = map[Dimension][]Dimension{
	DimChemical: {DimIndustry, DimFacility},
	DimIndustry: {DimChemical},
	DimFacility: {DimChemical},
}

// PivotRowDimensions lists the valid pivot row dimensions in display order.
var PivotRowDimensions = []Dimension{DimChemical, DimIndustry, DimFacility}

// CompatibleColumns returns the column dimensions allowed for row.
func CompatibleColumns(row Dimension) []Dimension {
	return slices.Clone(pivotColumns[row])
}

// PivotRequest selects a pivot's axes. Selected restricts the column values;
// when empty, DefaultSelection is used.
type PivotRequest struct {
	Row      Dimension
	Column   Dimension
	Selected []string
}

// PivotRow is one row of a pivot table. Values align with PivotTable.Columns.
type PivotRow struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// PivotTable is summed tons for each (row value, column value) pair.
type PivotTable struct {
	Row      Dimension  `json:"row"`
	Column   Dimension  `json:"column"`
	Selected []string   `json:"selected"`
	Columns  []string   `json:"columns"`
	Rows     []PivotRow `json:"rows"`
}

// ValidatePivot checks that row and column are known and compatible.
func ValidatePivot(row, column Dimension) error {
	allowed, ok := pivotColumns[row]
	if !ok {
		return fmt.Errorf("%w: pivot row %q", ErrUnknownDimension, row)
	}
	if _, err := ParseDimension(string(column)); err != nil {
		return fmt.Errorf("%w: pivot column %q", ErrUnknownDimension, column)
	}
	if !slices.Contains(allowed, column) {
		return fmt.Errorf("%w: %s by %s", ErrIncompatibleDimensions, row, column)
	}
	return nil
}

// ColumnValues returns the distinct values of dim among SETx records in
// first-seen order.
func ColumnValues(records []EmissionRecord, dim Dimension) []string {
	f := SETx()
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		v := dim.Value(r)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// DefaultSelection returns the first DefaultPivotSelection distinct values
// of dim among SETx records.
func DefaultSelection(records []EmissionRecord, dim Dimension) []string {
	vals := ColumnValues(records, dim)
	if len(vals) > DefaultPivotSelection {
		vals = vals[:DefaultPivotSelection]
	}
	return vals
}

// Pivot builds a row × column table of summed tons over SETx records whose
// column value is selected. Missing cells are zero; rows and columns are in
// lexicographic order.
func Pivot(records []EmissionRecord, req PivotRequest) (PivotTable, error) {
	if err := ValidatePivot(req.Row, req.Column); err != nil {
		return PivotTable{}, err
	}

	selected := req.Selected
	if len(selected) == 0 {
		selected = DefaultSelection(records, req.Column)
	}

	f := SETx()
	cells := make(map[string]map[string]float64)
	colSet := make(map[string]bool)
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		col := req.Column.Value(r)
		if !slices.Contains(selected, col) {
			continue
		}
		row := req.Row.Value(r)
		if cells[row] == nil {
			cells[row] = make(map[string]float64)
		}
		cells[row][col] += r.TotalTons
		colSet[col] = true
	}

	if len(cells) == 0 {
		return PivotTable{}, fmt.Errorf("%w: %s by %s", ErrEmptyPivot, req.Row, req.Column)
	}

	cols := sortedKeys(colSet)
	rowKeys := make([]string, 0, len(cells))
	for k := range cells {
		rowKeys = append(rowKeys, k)
	}
	slices.Sort(rowKeys)

	table := PivotTable{
		Row:      req.Row,
		Column:   req.Column,
		Selected: slices.Clone(selected),
		Columns:  cols,
		Rows:     make([]PivotRow, len(rowKeys)),
	}
	for i, k := range rowKeys {
		vals := make([]float64, len(cols))
		for j, c := range cols {
			vals[j] = cells[k][c]
		}
		table.Rows[i] = PivotRow{Key: k, Values: vals}
	}
	return table, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
