package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// Variant names.
const (
	VariantTRI         = "tri"
	VariantTRIToxicity = "tri-toxicity"
	VariantPointSource = "point-source"
)

// Variant parameterizes the load pipeline for one dashboard flavor: where
// the emissions table lives, how its columns map onto records, and which
// reference joins run.
type Variant struct {
	Name  string
	Title string

	// Locator is a path or URL; {year} and {region} are substituted per request.
	Locator string
	Columns domain.ColumnMap
	Parse   domain.ParseOptions
	Joins   domain.JoinKeys

	// FilterYear keeps only rows whose year column matches the request.
	FilterYear bool
}

// Resolve substitutes year and region into the variant's locator.
func (v Variant) Resolve(year int, region string) string {
	return strings.NewReplacer(
		"{year}", strconv.Itoa(year),
		"{region}", strings.ToUpper(region),
	).Replace(v.Locator)
}

// triColumns are the TRI basic download headers after ordinal prefixes are stripped.
var triColumns = domain.ColumnMap{
	Year:         "YEAR",
	FacilityID:   "TRIFD",
	FacilityName: "FACILITY NAME",
	County:       "COUNTY",
	State:        "ST",
	Lat:          "LATITUDE",
	Lon:          "LONGITUDE",
	Chemical:     "CHEMICAL",
	CAS:          "CAS#",
	FugitiveAir:  "5.1 - FUGITIVE AIR",
	StackAir:     "5.2 - STACK AIR",
	Unit:         "UNIT OF MEASURE",
	NAICS:        "PRIMARY NAICS",
}

// starsColumns are the TCEQ STARS point-source export headers. Annual
// routine emissions are already in tons and carried as the single release
// column.
var starsColumns = domain.ColumnMap{
	Year:         "Year",
	FacilityID:   "Account Number",
	FacilityName: "Site Name",
	County:       "County",
	Lat:          "Latitude",
	Lon:          "Longitude",
	Chemical:     "Contaminant",
	CAS:          "CAS Number",
	FugitiveAir:  "Annual Emissions (tpy)",
	NAICS:        "NAICS",
}

// Variants is the registry of supported dashboard variants.
type Variants map[string]Variant

// NewVariants builds the variant registry from the configured source locations.
func NewVariants(triURLTemplate, pointSourcePath string) Variants {
	return Variants{
		VariantTRI: {
			Name:    VariantTRI,
			Title:   "Toxics Release Inventory",
			Locator: triURLTemplate,
			Columns: triColumns,
			Joins:   domain.JoinKeys{Industry: true},
		},
		VariantTRIToxicity: {
			Name:    VariantTRIToxicity,
			Title:   "Toxics Release Inventory with Toxicity Values",
			Locator: triURLTemplate,
			Columns: triColumns,
			Joins:   domain.JoinKeys{Industry: true, Toxicity: true},
		},
		VariantPointSource: {
			Name:       VariantPointSource,
			Title:      "TCEQ Point Source Emissions",
			Locator:    pointSourcePath,
			Columns:    starsColumns,
			Parse:      domain.ParseOptions{FixedUnit: domain.UnitTons},
			Joins:      domain.JoinKeys{Facility: true, Industry: true},
			FilterYear: true,
		},
	}
}

// Get returns the named variant.
func (vs Variants) Get(name string) (Variant, error) {
	v, ok := vs[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Names returns the variant names in sorted order.
func (vs Variants) Names() []string {
	names := make([]string, 0, len(vs))
	for n := range vs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
