package reference

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/tri-dashboard/internal/adapter/source"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// ReadToxicity decodes a long-format toxicity CSV with one row per
// (chemical, value type): CASRN, Type and Value columns. Rows with an empty
// identifier or an unparseable value are skipped.
func ReadToxicity(r io.Reader) ([]domain.ToxicityValue, error) {
	table, err := source.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read toxicity table: %w", err)
	}
	idx := headerIndex(table.Header)
	casCol, ok := lookup(idx, "casrn", "cas", "cas#")
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "CASRN")
	}
	typeCol, ok := lookup(idx, "type", "value type", "toxicity type")
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "Type")
	}
	valCol, ok := lookup(idx, "value", "toxicity value")
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "Value")
	}

	out := make([]domain.ToxicityValue, 0, len(table.Rows))
	for _, row := range table.Rows {
		cas := cell(row, casCol)
		v, err := strconv.ParseFloat(cell(row, valCol), 64)
		if cas == "" || err != nil {
			continue
		}
		out = append(out, domain.ToxicityValue{CAS: cas, Type: cell(row, typeCol), Value: v})
	}
	return out, nil
}

// ReadFacilities decodes the point-source facility list. The account number
// column is required; name, county, industry description and coordinates
// are optional.
func ReadFacilities(r io.Reader) ([]domain.FacilityInfo, error) {
	table, err := source.ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("read facility table: %w", err)
	}
	idx := headerIndex(table.Header)
	idCol, ok := lookup(idx, "account number", "account", "rn")
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingColumn, "Account Number")
	}
	nameCol, hasName := lookup(idx, "site name", "regulated entity name", "facility name")
	countyCol, hasCounty := lookup(idx, "county")
	descCol, hasDesc := lookup(idx, "industry description", "naics description", "sic description")
	latCol, hasLat := lookup(idx, "latitude", "lat")
	lonCol, hasLon := lookup(idx, "longitude", "lon")

	opt := func(row []string, i int, ok bool) string {
		if !ok {
			return ""
		}
		return cell(row, i)
	}
	coord := func(row []string, i int, ok bool) float64 {
		v, _ := strconv.ParseFloat(strings.TrimSpace(opt(row, i, ok)), 64)
		return v
	}

	out := make([]domain.FacilityInfo, 0, len(table.Rows))
	for _, row := range table.Rows {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		out = append(out, domain.FacilityInfo{
			ID:           id,
			Name:         opt(row, nameCol, hasName),
			County:       opt(row, countyCol, hasCounty),
			IndustryDesc: opt(row, descCol, hasDesc),
			Lat:          coord(row, latCol, hasLat),
			Lon:          coord(row, lonCol, hasLon),
		})
	}
	return out, nil
}
