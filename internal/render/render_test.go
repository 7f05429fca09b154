package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

func square(x, y float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
	}})
}

func testLimits() dashboard.Limits {
	return dashboard.Limits{
		MinYear:        2020,
		MaxYear:        2022,
		DefaultYear:    2022,
		DefaultRegion:  "TX",
		DefaultVariant: "tri",
		Regions:        []string{"TX", "US"},
		Variants:       []string{"tri"},
		VariantTitles:  map[string]string{"tri": "Toxics Release Inventory"},
	}
}

func testView() dashboard.View {
	ds := &domain.Dataset{
		Variant: "tri",
		Year:    2022,
		Region:  "TX",
		Records: []domain.EmissionRecord{
			{County: "JEFFERSON", Chemical: "BENZENE", IndustryDesc: "Petroleum Refineries", TotalPounds: 4000, TotalTons: 2},
			{County: "ORANGE", Chemical: "TOLUENE", IndustryDesc: "Petrochemical Manufacturing", TotalPounds: 8000, TotalTons: 4},
		},
		Counties: []domain.County{
			{Name: "Jefferson", Key: "JEFFERSON", Geometry: square(-94.5, 29.8)},
			{Name: "Orange", Key: "ORANGE", Geometry: square(-94.0, 30.0)},
			{Name: "Travis", Key: "TRAVIS"},
		},
		LoadedAt: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	lim := testLimits()
	return dashboard.Render(dashboard.DefaultState(lim), lim, ds, nil)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1,234.57", Tons(1234.567))
	assert.Equal(t, "2,000,000", Pounds(1999999.6))
	assert.Equal(t, "12,345", Count(12345))
}

func TestChoroplethGeoJSON(t *testing.T) {
	v := testView()
	b, err := ChoroplethGeoJSON(v.Choropleth)
	require.NoError(t, err)

	var doc struct {
		Type     string    `json:"type"`
		BBox     []float64 `json:"bbox"`
		Features []struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2, "counties without geometry are skipped")
	assert.Equal(t, "JEFFERSON", doc.Features[0].ID)
	assert.Equal(t, "Jefferson", doc.Features[0].Properties["name"])
	assert.InDelta(t, 2, doc.Features[0].Properties["tons"], 0)
	assert.Equal(t, domain.Bands[0].Color, doc.Features[0].Properties["fill"])
	assert.Equal(t, []float64{-94.5, 29.8, -93.0, 31.0}, doc.BBox)
}

func TestChoroplethGeoJSON_Empty(t *testing.T) {
	b, err := ChoroplethGeoJSON(nil)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"features":[]`)
}

func TestBarChartPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, BarChartPNG(&buf, testView().Chart))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestBarChartPNG_NoBars(t *testing.T) {
	err := BarChartPNG(&bytes.Buffer{}, domain.ChartData{Title: "empty"})
	assert.True(t, errors.Is(err, ErrNoBars))
}

func TestPage(t *testing.T) {
	data, err := NewPageData(testView(), "/chart.png?year=2022", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, data))
	html := buf.String()

	assert.Contains(t, html, "<title>Toxics Release Inventory 2022 TX</title>")
	assert.Contains(t, html, `<form method="get"`)
	assert.Contains(t, html, "JEFFERSON")
	assert.Contains(t, html, "2022 Annual Emissions by Chemical in SETx")
	assert.Contains(t, html, `src="/chart.png?year=2022"`)
	assert.Contains(t, html, `"FeatureCollection"`)
	assert.Contains(t, html, "L.geoJSON")
	assert.NotContains(t, html, "Data unavailable")
}

func TestPage_StaticReportHasNoControls(t *testing.T) {
	data, err := NewPageData(testView(), "chart.png", true)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, data))
	assert.NotContains(t, buf.String(), "<form")
	assert.Contains(t, buf.String(), `src="chart.png"`)
}

func TestPage_Degraded(t *testing.T) {
	lim := testLimits()
	v := dashboard.Render(dashboard.DefaultState(lim), lim, nil,
		domain.Malformed("tri.csv", errors.New("missing column CHEMICAL")))
	data, err := NewPageData(v, "", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, data))
	html := buf.String()
	assert.Contains(t, html, "Data unavailable")
	assert.Contains(t, html, "malformed")
	assert.Contains(t, html, "missing column CHEMICAL")
	assert.False(t, strings.Contains(html, `id="map"`))
}

func TestWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, testView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCounties, SheetGroups, SheetPivot}, f.GetSheetList())

	rows, err := f.GetRows(SheetCounties)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"County", "Pounds", "Tons", "Rank"}, rows[0])
	assert.Equal(t, "ORANGE", rows[1][0])
	assert.Equal(t, "Statewide", rows[3][0])

	pivot, err := f.GetRows(SheetPivot)
	require.NoError(t, err)
	assert.Equal(t, "Chemical", pivot[0][0])
}
