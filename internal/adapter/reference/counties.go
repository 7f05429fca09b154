package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// CountyNameProperty is the GeoJSON property holding the county display name
// in the TxDOT county boundary layer.
const CountyNameProperty = "CNTY_NM"

// ReadCounties decodes a GeoJSON FeatureCollection of county boundaries.
// Features without a name or geometry are skipped.
func ReadCounties(r io.Reader) ([]domain.County, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode county geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("county geojson has no features")
	}

	counties := make([]domain.County, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		name, _ := f.Properties[CountyNameProperty].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		counties = append(counties, domain.County{
			Name:     name,
			Key:      domain.NormalizeCounty(name),
			Geometry: f.Geometry,
		})
	}
	if len(counties) == 0 {
		return nil, fmt.Errorf("county geojson has no features with a %s property", CountyNameProperty)
	}
	return counties, nil
}
