package dashboard

import (
	"errors"
	"slices"
	"time"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
)

// Pivot failure reasons reported in View.PivotReason.
const (
	PivotReasonUnknown      = "unknown_dimension"
	PivotReasonIncompatible = "incompatible_dimensions"
	PivotReasonEmpty        = "empty"
)

// View is everything the page and the JSON endpoints display for one state.
// When the dataset failed to load, only State, Limits and the error fields
// are set.
type View struct {
	State        State
	Limits       Limits
	VariantTitle string

	Error     string
	ErrorKind domain.ErrorKind

	LoadedAt   time.Time
	Rows       int
	Join       domain.JoinStats
	UnitErrors int
	Issues     []string

	StatewidePounds float64
	StatewideTons   float64
	RegionPounds    float64
	RegionTons      float64
	Counties        []domain.GroupTotal

	Chart      domain.ChartData
	ChartError string

	Pivot        *domain.PivotTable
	PivotError   string
	PivotReason  string
	PivotRows    []domain.Dimension
	PivotColumns []domain.Dimension
	PivotOptions []string

	Choropleth []domain.ChoroplethCell
	Bands      []domain.Band

	ToxicityTypes []string
	Chemicals     []domain.ChemicalProfile
	Facilities    []domain.FacilityInfo
}

// Loaded reports whether the view carries dataset-derived content.
func (v View) Loaded() bool {
	return v.Error == ""
}

// Render computes the view for s over ds. It never mutates ds. A non-nil
// loadErr produces a degraded view carrying only the error.
func Render(s State, lim Limits, ds *domain.Dataset, loadErr error) View {
	v := View{
		State:        s,
		Limits:       lim,
		VariantTitle: lim.VariantTitles[s.Variant],
		PivotRows:    domain.PivotRowDimensions,
		PivotColumns: domain.CompatibleColumns(s.PivotRow),
		Bands:        domain.Bands,
	}
	if v.VariantTitle == "" {
		v.VariantTitle = s.Variant
	}
	if loadErr != nil || ds == nil {
		if loadErr == nil {
			loadErr = errors.New("no dataset")
		}
		v.Error = loadErr.Error()
		v.ErrorKind = domain.KindOf(loadErr)
		return v
	}

	v.LoadedAt = ds.LoadedAt
	v.Rows = len(ds.Records)
	v.Join = ds.Join
	v.UnitErrors = ds.UnitErrors
	v.Issues = ds.Issues

	v.StatewidePounds, v.StatewideTons = domain.Totals(ds.Records, domain.Filter{})
	v.RegionPounds, v.RegionTons = domain.Totals(ds.Records, domain.SETx())
	v.Counties = domain.CountyTotals(ds.Records)

	chart, err := domain.BuildChart(ds.Records, domain.ChartOptions{
		Dimension: s.Group,
		SETx:      s.SETx,
		TopN:      s.TopN,
		Year:      s.Year,
	})
	if err != nil {
		v.ChartError = err.Error()
	}
	v.Chart = chart

	renderPivot(&v, s, ds.Records)

	v.Choropleth = domain.Choropleth(ds.Counties, v.Counties)

	if len(ds.ToxicityTypes) > 0 {
		v.ToxicityTypes = ds.ToxicityTypes
		v.Chemicals = domain.ChemicalProfiles(ds.Records, domain.SETx())
	}
	if s.Variant == pipeline.VariantPointSource {
		v.Facilities = domain.Facilities(ds.Records)
	}
	return v
}

// renderPivot fills the pivot fields. Selected values absent from the data
// are dropped; if none remain the default selection applies.
func renderPivot(v *View, s State, records []domain.EmissionRecord) {
	v.PivotOptions = domain.ColumnValues(records, s.PivotColumn)

	var selected []string
	for _, sel := range s.PivotSelected {
		if slices.Contains(v.PivotOptions, sel) {
			selected = append(selected, sel)
		}
	}

	table, err := domain.Pivot(records, domain.PivotRequest{
		Row:      s.PivotRow,
		Column:   s.PivotColumn,
		Selected: selected,
	})
	if err != nil {
		v.PivotError = err.Error()
		v.PivotReason = PivotReason(err)
		return
	}
	v.Pivot = &table
}

// PivotReason classifies a pivot error for metrics and API responses.
func PivotReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIncompatibleDimensions):
		return PivotReasonIncompatible
	case errors.Is(err, domain.ErrUnknownDimension):
		return PivotReasonUnknown
	default:
		return PivotReasonEmpty
	}
}
