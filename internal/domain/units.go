package domain

import (
	"fmt"
	"strings"
)

const (
	// GramsPerPound converts gram-denominated releases (dioxins) to pounds.
	GramsPerPound = 453.592
	// PoundsPerTon is the short ton.
	PoundsPerTon = 2000.0
)

// Unit-of-measure labels as they appear in source data.
const (
	UnitPounds = "Pounds"
	UnitGrams  = "Grams"
	UnitTons   = "Tons"
)

// UnitPolicy decides how unrecognized unit labels are treated.
type UnitPolicy string

const (
	// UnitPolicyStrict keeps records with unknown units but flags them and
	// counts them as zero.
	UnitPolicyStrict UnitPolicy = "strict"
	// UnitPolicyLegacy treats every label other than Pounds and Tons as grams.
	UnitPolicyLegacy UnitPolicy = "legacy"
)

// Valid reports whether p is a known policy.
func (p UnitPolicy) Valid() bool {
	return p == UnitPolicyStrict || p == UnitPolicyLegacy
}

// PoundsFor converts a fugitive + stack release in unit to pounds.
func PoundsFor(fugitive, stack float64, unit string, policy UnitPolicy) (float64, error) {
	sum := fugitive + stack
	switch strings.TrimSpace(unit) {
	case UnitPounds:
		return sum, nil
	case UnitGrams:
		return sum / GramsPerPound, nil
	case UnitTons:
		return sum * PoundsPerTon, nil
	}
	if policy == UnitPolicyLegacy {
		return sum / GramsPerPound, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
}

// NormalizeUnits fills the derived pound and ton totals on rec. Records with
// an unknown unit are returned with zero totals, UnitValid false and the
// error; they are never dropped.
func NormalizeUnits(rec EmissionRecord, policy UnitPolicy) (EmissionRecord, error) {
	pounds, err := PoundsFor(rec.FugitiveAir, rec.StackAir, rec.Unit, policy)
	if err != nil {
		rec.TotalPounds = 0
		rec.TotalTons = 0
		rec.UnitValid = false
		return rec, err
	}
	rec.TotalPounds = pounds
	rec.TotalTons = pounds / PoundsPerTon
	rec.UnitValid = true
	return rec, nil
}
