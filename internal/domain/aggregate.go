package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// Dimension is a column records can be grouped or pivoted by.
type Dimension string

const (
	DimChemical Dimension = "CHEMICAL"
	DimIndustry Dimension = "NAICS Description"
	DimFacility Dimension = "FACILITY NAME"
	DimCounty   Dimension = "COUNTY"
)

// UnmatchedKey labels records whose grouping value is empty, typically an
// industry code with no NAICS match. Grouping them keeps totals conserved.
const UnmatchedKey = "(unmatched)"

// GroupDimensions lists the dimensions offered for the bar chart, in display order.
var GroupDimensions = []Dimension{DimChemical, DimIndustry, DimFacility}

// ParseDimension returns the dimension named s.
func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimChemical, DimIndustry, DimFacility, DimCounty:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Value extracts the grouping value of rec for d.
func (d Dimension) Value(rec EmissionRecord) string {
	var v string
	switch d {
	case DimChemical:
		v = rec.Chemical
	case DimIndustry:
		v = rec.IndustryDesc
	case DimFacility:
		v = rec.FacilityName
	case DimCounty:
		v = rec.County
	}
	if v == "" {
		return UnmatchedKey
	}
	return v
}

// Label is a short human-readable name for the dimension.
func (d Dimension) Label() string {
	switch d {
	case DimChemical:
		return "Chemical"
	case DimIndustry:
		return "Industry"
	case DimFacility:
		return "Facility"
	case DimCounty:
		return "County"
	}
	return string(d)
}

// SETxCounties are the Southeast Texas counties the dashboard reports on.
var SETxCounties = []string{"JASPER", "JEFFERSON", "ORANGE", "HARDIN", "NEWTON"}

// Filter restricts records by county. A zero Filter matches every record.
type Filter struct {
	Counties []string
}

// SETx returns a filter matching the five Southeast Texas counties.
func SETx() Filter {
	return Filter{Counties: SETxCounties}
}

// Match reports whether rec passes the filter.
func (f Filter) Match(rec EmissionRecord) bool {
	if len(f.Counties) == 0 {
		return true
	}
	return slices.Contains(f.Counties, rec.County)
}

// Apply returns the records that pass the filter.
func (f Filter) Apply(records []EmissionRecord) []EmissionRecord {
	if len(f.Counties) == 0 {
		return records
	}
	out := make([]EmissionRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Aggregate sums total pounds and tons per group of dim over the records
// passing f. The result is ordered by descending tons, ties by key, and
// carries dense ranks.
func Aggregate(records []EmissionRecord, dim Dimension, f Filter) ([]GroupTotal, error) {
	if _, err := ParseDimension(string(dim)); err != nil {
		return nil, err
	}

	sums := make(map[string]*GroupTotal)
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		key := dim.Value(r)
		g, ok := sums[key]
		if !ok {
			g = &GroupTotal{Key: key}
			sums[key] = g
		}
		g.Pounds += r.TotalPounds
	}

	out := make([]GroupTotal, 0, len(sums))
	for _, g := range sums {
		g.Tons = g.Pounds / PoundsPerTon
		out = append(out, *g)
	}
	SortTotals(out)
	DenseRank(out)
	return out, nil
}

// CountyTotals aggregates all records by county.
func CountyTotals(records []EmissionRecord) []GroupTotal {
	out, _ := Aggregate(records, DimCounty, Filter{})
	return out
}

// Totals sums pounds and tons over the records passing f.
func Totals(records []EmissionRecord, f Filter) (pounds, tons float64) {
	for _, r := range records {
		if f.Match(r) {
			pounds += r.TotalPounds
		}
	}
	return pounds, pounds / PoundsPerTon
}

// SortTotals orders totals by descending tons, breaking ties by key.
func SortTotals(totals []GroupTotal) {
	slices.SortStableFunc(totals, func(a, b GroupTotal) int {
		if c := cmp.Compare(b.Tons, a.Tons); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

// DenseRank assigns dense ranks to totals already sorted by SortTotals:
// equal totals share a rank and the next distinct total takes the next integer.
func DenseRank(totals []GroupTotal) {
	rank := 0
	for i := range totals {
		if i == 0 || totals[i].Tons != totals[i-1].Tons {
			rank++
		}
		totals[i].Rank = rank
	}
}

func sortFacilities(fs []FacilityInfo) {
	slices.SortFunc(fs, func(a, b FacilityInfo) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
