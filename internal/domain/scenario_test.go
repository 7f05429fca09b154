package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// Four rows across two SETx counties and two chemicals, each in pounds:
//
//	JEFFERSON BENZENE 324110  1000 + 3000 = 4000 lb = 2.0 t
//	JEFFERSON TOLUENE 324110  2000 +    0 = 2000 lb = 1.0 t
//	ORANGE    BENZENE 325110   500 +  500 = 1000 lb = 0.5 t
//	ORANGE    TOLUENE 325110  6000 + 2000 = 8000 lb = 4.0 t
func scenarioDataset(t *testing.T) []EmissionRecord {
	t.Helper()
	table := RawTable{
		Header: triHeader,
		Rows: [][]string{
			{"2022", "F1", "Refinery", "JEFFERSON", "TX", "29.9", "-93.9", "BENZENE", "71-43-2", "Pounds", "1000", "3000", "324110"},
			{"2022", "F1", "Refinery", "JEFFERSON", "TX", "29.9", "-93.9", "TOLUENE", "108-88-3", "Pounds", "2000", "0", "324110"},
			{"2022", "F2", "Chem Plant", "ORANGE", "TX", "30.1", "-93.7", "BENZENE", "71-43-2", "Pounds", "500", "500", "325110"},
			{"2022", "F2", "Chem Plant", "ORANGE", "TX", "30.1", "-93.7", "TOLUENE", "108-88-3", "Pounds", "6000", "2000", "325110"},
		},
	}
	records, _, err := ParseRecords(table, testColumns, ParseOptions{})
	require.NoError(t, err)

	for i := range records {
		records[i], err = NormalizeUnits(records[i], UnitPolicyStrict)
		require.NoError(t, err)
	}

	refs := References{Industries: NewIndustryIndex([]IndustryCode{
		{Code: "324110", Title: "Petroleum Refineries"},
		{Code: "325110", Title: "Petrochemical Manufacturing"},
	})}
	joined, stats := Join(records, refs, JoinKeys{Industry: true})
	require.Equal(t, JoinStats{Rows: 4}, stats)
	return joined
}

var floatCmp = cmpopts.EquateApprox(0, 1e-9)

func TestScenario_CountyTotals(t *testing.T) {
	got := CountyTotals(scenarioDataset(t))
	want := []GroupTotal{
		{Key: "ORANGE", Pounds: 9000, Tons: 4.5, Rank: 1},
		{Key: "JEFFERSON", Pounds: 6000, Tons: 3.0, Rank: 2},
	}
	if diff := cmp.Diff(want, got, floatCmp); diff != "" {
		t.Errorf("county totals mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_ChemicalChart(t *testing.T) {
	got, err := BuildChart(scenarioDataset(t), ChartOptions{Dimension: DimChemical, SETx: true, Year: 2022})
	require.NoError(t, err)
	want := ChartData{
		Title:     "2022 Annual Emissions by Chemical in SETx",
		Dimension: DimChemical,
		Region:    "SETx",
		Bars: []Bar{
			{Key: "TOLUENE", Label: "TOLUENE", Tons: 5.0},
			{Key: "BENZENE", Label: "BENZENE", Tons: 2.5},
		},
		Groups: 2,
		YMin:   2.5,
		YMax:   5.0,
	}
	if diff := cmp.Diff(want, got, floatCmp); diff != "" {
		t.Errorf("chart data mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_ChemicalByIndustryPivot(t *testing.T) {
	got, err := Pivot(scenarioDataset(t), PivotRequest{Row: DimChemical, Column: DimIndustry})
	require.NoError(t, err)
	want := PivotTable{
		Row:      DimChemical,
		Column:   DimIndustry,
		Selected: []string{"Petroleum Refineries", "Petrochemical Manufacturing"},
		Columns:  []string{"Petrochemical Manufacturing", "Petroleum Refineries"},
		Rows: []PivotRow{
			{Key: "BENZENE", Values: []float64{0.5, 2.0}},
			{Key: "TOLUENE", Values: []float64{4.0, 1.0}},
		},
	}
	if diff := cmp.Diff(want, got, floatCmp); diff != "" {
		t.Errorf("pivot mismatch (-want +got):\n%s", diff)
	}
}
