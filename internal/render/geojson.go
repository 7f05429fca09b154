package render

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// ChoroplethGeoJSON encodes choropleth cells as a FeatureCollection. Each
// feature carries the county name, banded tons, band index and fill color.
// Counties without geometry are skipped. The collection bbox spans every
// encoded geometry.
func ChoroplethGeoJSON(cells []domain.ChoroplethCell) ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(cells))}
	var bounds *geom.Bounds
	for _, c := range cells {
		g := c.County.Geometry
		if g == nil {
			continue
		}
		if bounds == nil {
			bounds = geom.NewBounds(g.Layout())
		}
		bounds.Extend(g)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       c.County.Key,
			Geometry: g,
			Properties: map[string]interface{}{
				"name":  c.County.Name,
				"tons":  c.Tons,
				"band":  c.Band,
				"label": domain.Bands[c.Band].Label,
				"fill":  c.Color(),
			},
		})
	}
	if bounds != nil && !bounds.IsEmpty() {
		fc.BBox = bounds
	}

	b, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode choropleth: %w", err)
	}
	return b, nil
}
