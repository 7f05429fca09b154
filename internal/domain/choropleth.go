package domain

import "slices"

// ChoroplethClamp caps county values before banding so one outlier cannot
// dominate the color scale.
const ChoroplethClamp = 50000

// Band is one color class of the county map. Lower bounds are inclusive.
type Band struct {
	Lower int    `json:"lower"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Bands are the county map color classes in ascending order.
var Bands = []Band{
	{Lower: 0, Label: "0 - 100", Color: "#00FF00"},
	{Lower: 100, Label: "100 - 200", Color: "#66FF00"},
	{Lower: 200, Label: "200 - 500", Color: "#CCFF00"},
	{Lower: 500, Label: "500 - 1000", Color: "#FFFF00"},
	{Lower: 1000, Label: "1000 - 2500", Color: "#FFCC00"},
	{Lower: 2500, Label: "2500 - 5000", Color: "#FF6600"},
	{Lower: 5000, Label: "5000+", Color: "#FF0000"},
}

// ChoroplethValue clamps tons to [0, ChoroplethClamp] and truncates it to an
// integer. The clamp happens in floating point so values beyond the int
// range still land in the top band; NaN maps to 0.
func ChoroplethValue(tons float64) int {
	if tons >= ChoroplethClamp {
		return ChoroplethClamp
	}
	if !(tons > 0) {
		return 0
	}
	return int(tons)
}

// BandFor returns the index of the band containing v.
func BandFor(v int) int {
	idx := 0
	for i, b := range Bands {
		if v >= b.Lower {
			idx = i
		}
	}
	return idx
}

// ChoroplethCell is one county of the map with its banded value.
type ChoroplethCell struct {
	County County
	Tons   int
	Band   int
}

// Color is the fill color of the cell's band.
func (c ChoroplethCell) Color() string {
	return Bands[c.Band].Color
}

// Choropleth left-joins county totals onto county geometry. Counties without
// emissions get 0. Cells are ordered by county name.
func Choropleth(counties []County, totals []GroupTotal) []ChoroplethCell {
	byKey := make(map[string]float64, len(totals))
	for _, t := range totals {
		byKey[t.Key] = t.Tons
	}

	cells := make([]ChoroplethCell, len(counties))
	for i, c := range counties {
		v := ChoroplethValue(byKey[c.Key])
		cells[i] = ChoroplethCell{County: c, Tons: v, Band: BandFor(v)}
	}
	slices.SortStableFunc(cells, func(a, b ChoroplethCell) int {
		switch {
		case a.County.Name < b.County.Name:
			return -1
		case a.County.Name > b.County.Name:
			return 1
		}
		return 0
	})
	return cells
}
