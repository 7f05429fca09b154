// Package dashboard holds the per-request dashboard state and the pure
// function that turns a state and a loaded dataset into a renderable view.
package dashboard

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/tri-dashboard/internal/config"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
)

// Query parameter names.
const (
	ParamVariant     = "variant"
	ParamYear        = "year"
	ParamRegion      = "region"
	ParamGroup       = "group"
	ParamSETx        = "setx"
	ParamTop         = "top"
	ParamPivotRow    = "prow"
	ParamPivotColumn = "pcol"
	ParamPivotSelect = "psel"
)

// MaxTopN bounds the bar chart limit a request may ask for.
const MaxTopN = 100

// Limits are the configured bounds and defaults a State is validated against.
type Limits struct {
	MinYear        int
	MaxYear        int
	DefaultYear    int
	DefaultRegion  string
	DefaultVariant string
	Regions        []string
	Variants       []string
	VariantTitles  map[string]string
}

// NewLimits derives the limits from configuration and the variant registry.
func NewLimits(cfg *config.Config, variants pipeline.Variants) Limits {
	titles := make(map[string]string, len(variants))
	for name, v := range variants {
		titles[name] = v.Title
	}
	return Limits{
		MinYear:        cfg.MinYear,
		MaxYear:        cfg.MaxYear,
		DefaultYear:    cfg.DefaultYear,
		DefaultRegion:  cfg.DefaultRegion,
		DefaultVariant: cfg.DefaultVariant,
		Regions:        slices.Clone(config.Regions),
		Variants:       variants.Names(),
		VariantTitles:  titles,
	}
}

// State is everything a user has selected. It is rebuilt from the request on
// every interaction; invalid or missing values fall back to defaults.
type State struct {
	Variant       string
	Year          int
	Region        string
	Group         domain.Dimension
	SETx          bool
	TopN          int
	PivotRow      domain.Dimension
	PivotColumn   domain.Dimension
	PivotSelected []string
}

// DefaultState returns the state shown on first visit.
func DefaultState(lim Limits) State {
	return State{
		Variant:     lim.DefaultVariant,
		Year:        lim.DefaultYear,
		Region:      lim.DefaultRegion,
		Group:       domain.DimChemical,
		SETx:        true,
		TopN:        domain.DefaultTopN,
		PivotRow:    domain.DimChemical,
		PivotColumn: domain.DimIndustry,
	}
}

// ParseState reads a State from query parameters, defaulting anything
// missing or invalid. The pivot column is reset to the first compatible
// column when it does not fit the chosen row.
func ParseState(q url.Values, lim Limits) State {
	s := DefaultState(lim)

	if v := q.Get(ParamVariant); slices.Contains(lim.Variants, v) {
		s.Variant = v
	}
	if y, err := strconv.Atoi(q.Get(ParamYear)); err == nil && y >= lim.MinYear && y <= lim.MaxYear {
		s.Year = y
	}
	if r := strings.ToUpper(q.Get(ParamRegion)); slices.Contains(lim.Regions, r) {
		s.Region = r
	}
	if g, err := domain.ParseDimension(q.Get(ParamGroup)); err == nil && slices.Contains(domain.GroupDimensions, g) {
		s.Group = g
	}
	if b, err := strconv.ParseBool(q.Get(ParamSETx)); err == nil {
		s.SETx = b
	}
	if n, err := strconv.Atoi(q.Get(ParamTop)); err == nil && n > 0 {
		s.TopN = min(n, MaxTopN)
	}

	if r, err := domain.ParseDimension(q.Get(ParamPivotRow)); err == nil && slices.Contains(domain.PivotRowDimensions, r) {
		s.PivotRow = r
	}
	compatible := domain.CompatibleColumns(s.PivotRow)
	s.PivotColumn = compatible[0]
	if c, err := domain.ParseDimension(q.Get(ParamPivotColumn)); err == nil && slices.Contains(compatible, c) {
		s.PivotColumn = c
	}
	for _, v := range q[ParamPivotSelect] {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(s.PivotSelected, v) {
			s.PivotSelected = append(s.PivotSelected, v)
		}
	}
	return s
}

// Query encodes the state as query parameters; ParseState(s.Query()) == s.
func (s State) Query() url.Values {
	q := url.Values{
		ParamVariant:     {s.Variant},
		ParamYear:        {strconv.Itoa(s.Year)},
		ParamRegion:      {s.Region},
		ParamGroup:       {string(s.Group)},
		ParamSETx:        {strconv.FormatBool(s.SETx)},
		ParamTop:         {strconv.Itoa(s.TopN)},
		ParamPivotRow:    {string(s.PivotRow)},
		ParamPivotColumn: {string(s.PivotColumn)},
	}
	if len(s.PivotSelected) > 0 {
		q[ParamPivotSelect] = slices.Clone(s.PivotSelected)
	}
	return q
}

// Request is the dataset the state needs.
func (s State) Request() pipeline.Request {
	return pipeline.Request{Variant: s.Variant, Year: s.Year, Region: s.Region}
}

// Years lists the selectable reporting years, newest first.
func (l Limits) Years() []int {
	years := make([]int, 0, l.MaxYear-l.MinYear+1)
	for y := l.MaxYear; y >= l.MinYear; y-- {
		years = append(years, y)
	}
	return years
}
