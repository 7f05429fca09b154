package domain

import (
	"time"

	"github.com/twpayne/go-geom"
)

// RawTable is a decoded CSV: a header row and the data rows beneath it.
// Rows may be shorter than the header; missing cells read as empty.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// EmissionRecord is one (facility, chemical, reporting year) row after column
// mapping, unit normalization and reference joins.
type EmissionRecord struct {
	Year         int     `json:"year"`
	FacilityID   string  `json:"facility_id"`
	FacilityName string  `json:"facility_name"`
	County       string  `json:"county"`
	State        string  `json:"state"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Chemical     string  `json:"chemical"`
	CAS          string  `json:"cas"`
	FugitiveAir  float64 `json:"fugitive_air"`
	StackAir     float64 `json:"stack_air"`
	Unit         string  `json:"unit"`
	NAICS        string  `json:"naics"`

	// Joined reference fields. Empty when the key did not match.
	IndustryDesc string             `json:"industry_description"`
	Toxicity     map[string]float64 `json:"toxicity,omitempty"`

	// Derived by NormalizeUnits.
	TotalPounds float64 `json:"total_pounds"`
	TotalTons   float64 `json:"total_tons"`
	UnitValid   bool    `json:"unit_valid"`
}

// IndustryCode maps a NAICS code to its title.
type IndustryCode struct {
	Code  string
	Title string
}

// County is one county boundary. Key is the upper-cased display name and
// matches EmissionRecord.County.
type County struct {
	Name     string
	Key      string
	Geometry geom.T
}

// ToxicityValue is one (chemical, value type) measurement from the
// toxicity reference table.
type ToxicityValue struct {
	CAS   string
	Type  string
	Value float64
}

// FacilityInfo is reference metadata for a point source, keyed by account number.
type FacilityInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	County       string  `json:"county"`
	IndustryDesc string  `json:"industry_description"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

// GroupTotal is the summed emissions of one group. Rank is dense, 1 = highest.
type GroupTotal struct {
	Key    string  `json:"key"`
	Pounds float64 `json:"pounds"`
	Tons   float64 `json:"tons"`
	Rank   int     `json:"rank"`
}

// Dataset is a fully loaded and joined emissions table for one
// (variant, year, region). It is immutable once built and shared between
// requests; callers must not modify Records.
type Dataset struct {
	Variant       string
	Year          int
	Region        string
	Records       []EmissionRecord
	Counties      []County
	ToxicityTypes []string
	Join          JoinStats
	UnitErrors    int
	Issues        []string
	LoadedAt      time.Time

	// ReferenceIssues counts reference tables that failed to load. A
	// dataset with failures is served but not cached.
	ReferenceIssues int
}

// CountySummary is the published form of one county total for a dataset.
type CountySummary struct {
	Variant  string    `json:"variant"`
	Year     int       `json:"year"`
	Region   string    `json:"region"`
	County   string    `json:"county"`
	Pounds   float64   `json:"pounds"`
	Tons     float64   `json:"tons"`
	Rank     int       `json:"rank"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Summaries flattens the dataset's county totals into publishable summaries.
func (d *Dataset) Summaries() []CountySummary {
	totals := CountyTotals(d.Records)
	out := make([]CountySummary, 0, len(totals))
	for _, t := range totals {
		out = append(out, CountySummary{
			Variant:  d.Variant,
			Year:     d.Year,
			Region:   d.Region,
			County:   t.Key,
			Pounds:   t.Pounds,
			Tons:     t.Tons,
			Rank:     t.Rank,
			LoadedAt: d.LoadedAt,
		})
	}
	return out
}
