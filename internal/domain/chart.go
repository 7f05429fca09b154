package domain

import (
	"fmt"
	"math"
)

const (
	// DefaultTopN is how many bars the chart shows when no limit is requested.
	DefaultTopN = 20
	// MaxLabelLen bounds bar labels; longer labels are cut and suffixed with "...".
	MaxLabelLen = 50
)

// Bar is one bar of the emissions chart.
type Bar struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Tons  float64 `json:"tons"`
}

// ChartData is the input to the grouped-emissions bar chart. YMin and YMax
// span the plotted values for a logarithmic axis.
type ChartData struct {
	Title     string    `json:"title"`
	Dimension Dimension `json:"dimension"`
	Region    string    `json:"region"`
	Bars      []Bar     `json:"bars"`
	Groups    int       `json:"groups"`
	YMin      float64   `json:"y_min"`
	YMax      float64   `json:"y_max"`
}

// ChartOptions selects what the bar chart shows.
type ChartOptions struct {
	Dimension Dimension
	SETx      bool
	TopN      int
	Year      int
}

// BuildChart aggregates records by the chosen dimension and keeps the top N
// groups with a positive total. Groups counts every positive group before the
// limit is applied.
func BuildChart(records []EmissionRecord, opts ChartOptions) (ChartData, error) {
	f := Filter{}
	region := "Texas"
	if opts.SETx {
		f = SETx()
		region = "SETx"
	}

	totals, err := Aggregate(records, opts.Dimension, f)
	if err != nil {
		return ChartData{}, err
	}

	positive := totals[:0:0]
	for _, t := range totals {
		if t.Tons > 0 {
			positive = append(positive, t)
		}
	}

	top := opts.TopN
	if top <= 0 {
		top = DefaultTopN
	}
	shown := positive
	if len(shown) > top {
		shown = shown[:top]
	}

	data := ChartData{
		Title:     fmt.Sprintf("%d Annual Emissions by %s in %s", opts.Year, opts.Dimension.Label(), region),
		Dimension: opts.Dimension,
		Region:    region,
		Bars:      make([]Bar, len(shown)),
		Groups:    len(positive),
	}
	data.YMin, data.YMax = math.Inf(1), 0
	for i, t := range shown {
		data.Bars[i] = Bar{Key: t.Key, Label: TruncateLabel(t.Key), Tons: t.Tons}
		data.YMin = math.Min(data.YMin, t.Tons)
		data.YMax = math.Max(data.YMax, t.Tons)
	}
	if len(shown) == 0 {
		data.YMin = 0
	}
	return data, nil
}

// TruncateLabel cuts labels longer than MaxLabelLen characters to that
// length plus "...".
func TruncateLabel(s string) string {
	t := truncateRunes(s, MaxLabelLen)
	if t == s {
		return s
	}
	return t + "..."
}
