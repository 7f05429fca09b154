package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ColumnMap names the source header (after NormalizeHeader) for each record
// field. Empty names mean the source does not carry that field.
type ColumnMap struct {
	Year         string
	FacilityID   string
	FacilityName string
	County       string
	State        string
	Lat          string
	Lon          string
	Chemical     string
	CAS          string
	FugitiveAir  string
	StackAir     string
	Unit         string
	NAICS        string
}

// ParseOptions control how a RawTable becomes records.
type ParseOptions struct {
	// FixedUnit is used for every row when the source has no unit column.
	FixedUnit string
	// Year, when non-zero and a Year column exists, keeps only rows of that year.
	Year int
}

// ParseStats reports row-level oddities found while parsing.
type ParseStats struct {
	Rows              int
	SkippedOtherYear  int
	NegativeQuantity  int
	UnparseableNumber int
}

// ParseRecords maps a raw CSV table onto emission records. It fails only
// when a required column (chemical, county or facility ID, and at least one
// release column) is missing; bad cells degrade to zero and are counted.
func ParseRecords(table RawTable, cols ColumnMap, opts ParseOptions) ([]EmissionRecord, ParseStats, error) {
	idx := make(map[string]int, len(table.Header))
	for i, h := range NormalizeHeaders(table.Header) {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}

	if err := requireColumns(idx, cols); err != nil {
		return nil, ParseStats{}, err
	}

	var stats ParseStats
	records := make([]EmissionRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		get := func(name string) string {
			if name == "" {
				return ""
			}
			i, ok := idx[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		num := func(name string) float64 {
			v, ok := parseFloat(get(name))
			if !ok {
				stats.UnparseableNumber++
			}
			return v
		}

		year := int(num(cols.Year))
		if opts.Year != 0 && cols.Year != "" && year != opts.Year {
			stats.SkippedOtherYear++
			continue
		}

		fugitive, stack := num(cols.FugitiveAir), num(cols.StackAir)
		if fugitive < 0 || stack < 0 {
			stats.NegativeQuantity++
			fugitive, stack = max(fugitive, 0), max(stack, 0)
		}

		unit := get(cols.Unit)
		if cols.Unit == "" {
			unit = opts.FixedUnit
		}
		if year == 0 {
			year = opts.Year
		}

		records = append(records, EmissionRecord{
			Year:         year,
			FacilityID:   get(cols.FacilityID),
			FacilityName: get(cols.FacilityName),
			County:       NormalizeCounty(get(cols.County)),
			State:        get(cols.State),
			Lat:          num(cols.Lat),
			Lon:          num(cols.Lon),
			Chemical:     TruncateChemical(get(cols.Chemical)),
			CAS:          get(cols.CAS),
			FugitiveAir:  fugitive,
			StackAir:     stack,
			Unit:         unit,
			NAICS:        get(cols.NAICS),
		})
	}
	stats.Rows = len(records)
	return records, stats, nil
}

func requireColumns(idx map[string]int, cols ColumnMap) error {
	required := []string{cols.Chemical}
	if cols.County != "" {
		required = append(required, cols.County)
	} else {
		required = append(required, cols.FacilityID)
	}
	if cols.FugitiveAir == "" && cols.StackAir == "" {
		return fmt.Errorf("%w: no release column configured", ErrMissingColumn)
	}
	for _, c := range []string{cols.FugitiveAir, cols.StackAir} {
		if c != "" {
			required = append(required, c)
		}
	}
	for _, c := range required {
		if c == "" {
			return fmt.Errorf("%w: column mapping incomplete", ErrMissingColumn)
		}
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// parseFloat parses s as float64. Empty strings are zero and valid;
// unparseable values are zero and reported as invalid.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
