package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strconv"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"tons":     Tons,
	"pounds":   Pounds,
	"count":    Count,
	"toxicity": toxicityCell,
	"selected": isSelected,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// PageData is the template input for one dashboard page.
type PageData struct {
	View dashboard.View
	// ChartSrc is the bar chart image URL; empty omits the image.
	ChartSrc string
	GeoJSON  template.JS
	Groups   []domain.Dimension
	// Static hides the interactive controls, for saved reports.
	Static bool
}

// NewPageData prepares v for rendering, encoding its choropleth.
func NewPageData(v dashboard.View, chartSrc string, static bool) (PageData, error) {
	geo := []byte(`{"type":"FeatureCollection","features":[]}`)
	if len(v.Choropleth) > 0 {
		var err error
		if geo, err = ChoroplethGeoJSON(v.Choropleth); err != nil {
			return PageData{}, err
		}
	}
	return PageData{
		View:     v,
		ChartSrc: chartSrc,
		GeoJSON:  template.JS(geo), //nolint:gosec // generated from parsed geometry, not user input
		Groups:   domain.GroupDimensions,
		Static:   static,
	}, nil
}

// Page writes the dashboard HTML page.
func Page(w io.Writer, data PageData) error {
	if err := pageTemplate.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

func toxicityCell(c domain.ChemicalProfile, typ string) string {
	v, ok := c.Toxicity[typ]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func isSelected(value string, v dashboard.View) bool {
	if v.Pivot != nil {
		return slices.Contains(v.Pivot.Selected, value)
	}
	return slices.Contains(v.State.PivotSelected, value)
}
