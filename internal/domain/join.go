package domain

import "strings"

// JoinKeys selects which reference joins a variant performs.
type JoinKeys struct {
	Industry bool
	Toxicity bool
	Facility bool
}

// References holds the lookup indexes built from reference tables.
// Nil maps are valid and match nothing.
type References struct {
	Industries    map[string]string
	Toxicity      map[string]map[string]float64
	ToxicityTypes []string
	Facilities    map[string]FacilityInfo
}

// JoinStats counts rows whose key found no match in each reference table.
type JoinStats struct {
	Rows              int `json:"rows"`
	IndustryUnmatched int `json:"industry_unmatched"`
	ToxicityUnmatched int `json:"toxicity_unmatched"`
	FacilityUnmatched int `json:"facility_unmatched"`
}

// NewIndustryIndex builds a NAICS code → title lookup. The first title seen
// for a code wins.
func NewIndustryIndex(codes []IndustryCode) map[string]string {
	idx := make(map[string]string, len(codes))
	for _, c := range codes {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			continue
		}
		if _, ok := idx[code]; ok {
			continue
		}
		idx[code] = strings.TrimSpace(c.Title)
	}
	return idx
}

// NewToxicityIndex pivots toxicity values to CAS → (type → value) keyed by the
// hyphen-stripped CAS number. The first value seen per (CAS, type) wins.
// Types are returned in first-seen order.
func NewToxicityIndex(values []ToxicityValue) (map[string]map[string]float64, []string) {
	idx := make(map[string]map[string]float64)
	var types []string
	seenType := make(map[string]bool)
	for _, v := range values {
		cas := NormalizeCAS(v.CAS)
		if cas == "" || v.Type == "" {
			continue
		}
		if !seenType[v.Type] {
			seenType[v.Type] = true
			types = append(types, v.Type)
		}
		row, ok := idx[cas]
		if !ok {
			row = make(map[string]float64)
			idx[cas] = row
		}
		if _, ok := row[v.Type]; !ok {
			row[v.Type] = v.Value
		}
	}
	return idx, types
}

// NewFacilityIndex builds an account number → facility lookup. The first
// entry for an account wins.
func NewFacilityIndex(facilities []FacilityInfo) map[string]FacilityInfo {
	idx := make(map[string]FacilityInfo, len(facilities))
	for _, f := range facilities {
		id := strings.TrimSpace(f.ID)
		if id == "" {
			continue
		}
		if _, ok := idx[id]; ok {
			continue
		}
		f.County = NormalizeCounty(f.County)
		idx[id] = f
	}
	return idx
}

// Join left-joins records against the selected reference tables. The output
// has exactly one row per input row, in input order; unmatched keys leave the
// joined fields empty and are counted in the returned stats.
func Join(records []EmissionRecord, refs References, keys JoinKeys) ([]EmissionRecord, JoinStats) {
	out := make([]EmissionRecord, len(records))
	stats := JoinStats{Rows: len(records)}

	for i, rec := range records {
		if keys.Facility {
			if f, ok := refs.Facilities[strings.TrimSpace(rec.FacilityID)]; ok {
				rec = applyFacility(rec, f)
			} else {
				stats.FacilityUnmatched++
			}
		}

		if keys.Industry {
			if title, ok := refs.Industries[strings.TrimSpace(rec.NAICS)]; ok {
				rec.IndustryDesc = title
			} else if rec.IndustryDesc == "" {
				stats.IndustryUnmatched++
			}
		}

		if keys.Toxicity {
			if tox, ok := refs.Toxicity[NormalizeCAS(rec.CAS)]; ok {
				rec.Toxicity = tox
			} else {
				stats.ToxicityUnmatched++
			}
		}

		out[i] = rec
	}
	return out, stats
}

// applyFacility fills facility metadata the emission row lacks. The
// industry description always comes from the facility list.
func applyFacility(rec EmissionRecord, f FacilityInfo) EmissionRecord {
	if rec.FacilityName == "" {
		rec.FacilityName = f.Name
	}
	if rec.County == "" {
		rec.County = f.County
	}
	if rec.Lat == 0 && rec.Lon == 0 {
		rec.Lat, rec.Lon = f.Lat, f.Lon
	}
	if f.IndustryDesc != "" {
		rec.IndustryDesc = f.IndustryDesc
	}
	return rec
}

// Facilities returns the distinct facilities present in records, ordered by
// name then ID.
func Facilities(records []EmissionRecord) []FacilityInfo {
	seen := make(map[string]bool)
	var out []FacilityInfo
	for _, r := range records {
		key := r.FacilityID
		if key == "" {
			key = r.FacilityName
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, FacilityInfo{
			ID:           r.FacilityID,
			Name:         r.FacilityName,
			County:       r.County,
			IndustryDesc: r.IndustryDesc,
			Lat:          r.Lat,
			Lon:          r.Lon,
		})
	}
	sortFacilities(out)
	return out
}
