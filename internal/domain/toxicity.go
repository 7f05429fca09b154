package domain

import (
	"cmp"
	"slices"
)

// ChemicalProfile is the summed emissions of one chemical with the toxicity
// values joined to it.
type ChemicalProfile struct {
	Chemical string             `json:"chemical"`
	CAS      string             `json:"cas"`
	Tons     float64            `json:"tons"`
	Toxicity map[string]float64 `json:"toxicity,omitempty"`
}

// ChemicalProfiles aggregates records passing f by chemical, ordered by
// descending tons then name. The CAS number and toxicity values are taken
// from the first record of each chemical that carries them.
func ChemicalProfiles(records []EmissionRecord, f Filter) []ChemicalProfile {
	byName := make(map[string]*ChemicalProfile)
	pounds := make(map[string]float64)
	for _, r := range records {
		if !f.Match(r) {
			continue
		}
		key := DimChemical.Value(r)
		p, ok := byName[key]
		if !ok {
			p = &ChemicalProfile{Chemical: key}
			byName[key] = p
		}
		pounds[key] += r.TotalPounds
		if p.CAS == "" {
			p.CAS = r.CAS
		}
		if p.Toxicity == nil && r.Toxicity != nil {
			p.Toxicity = r.Toxicity
		}
	}

	out := make([]ChemicalProfile, 0, len(byName))
	for key, p := range byName {
		p.Tons = pounds[key] / PoundsPerTon
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b ChemicalProfile) int {
		if c := cmp.Compare(b.Tons, a.Tons); c != 0 {
			return c
		}
		return cmp.Compare(a.Chemical, b.Chemical)
	})
	return out
}
