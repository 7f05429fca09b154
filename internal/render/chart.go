package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// ErrNoBars is returned when a chart has nothing to plot.
var ErrNoBars = errors.New("chart has no bars")

var barColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// Chart image size.
const (
	ChartWidth  = 12 * vg.Inch
	ChartHeight = 6 * vg.Inch
)

// BarChartPNG draws data as a PNG bar chart of tons per group.
func BarChartPNG(w io.Writer, data domain.ChartData) error {
	if len(data.Bars) == 0 {
		return ErrNoBars
	}

	p := plot.New()
	p.Title.Text = data.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Tons"

	values := make(plotter.Values, len(data.Bars))
	labels := make([]string, len(data.Bars))
	for i, b := range data.Bars {
		values[i] = b.Tons
		labels[i] = b.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
