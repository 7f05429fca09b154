package main

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// tolerance absorbs float summation order differences, in tons.
const tolerance = 1e-6

// errValidation marks a run where at least one phase failed.
var errValidation = errors.New("validation failed")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var sel selection
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a dataset and check unit, join, aggregation and map integrity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			state, ds, err := e.load(cmd.Context(), sel.query())
			if err != nil {
				return fmt.Errorf("load %s %d %s: %w", state.Variant, state.Year, state.Region, err)
			}
			return report(cmd.OutOrStdout(), ds, validateDataset(ds))
		},
	}
	sel.bind(cmd)
	return cmd
}

// validateDataset runs every phase over ds.
func validateDataset(ds *domain.Dataset) []*phase {
	return []*phase{
		validateUnits(ds),
		validateJoin(ds),
		validateConservation(ds),
		validateRanking(ds),
		validateCoverage(ds),
	}
}

func validateUnits(ds *domain.Dataset) *phase {
	p := &phase{name: "Unit normalization"}
	invalid := 0
	for i, r := range ds.Records {
		if !r.UnitValid {
			invalid++
			if r.TotalPounds != 0 || r.TotalTons != 0 {
				p.errorf("row %d (%s): unknown unit %q carries %.3f lb", i, r.Chemical, r.Unit, r.TotalPounds)
			}
			continue
		}
		if r.TotalPounds < 0 {
			p.errorf("row %d (%s): negative total %.3f lb", i, r.Chemical, r.TotalPounds)
		}
		if math.Abs(r.TotalTons-r.TotalPounds/domain.PoundsPerTon) > tolerance {
			p.errorf("row %d (%s): %.6f t != %.3f lb / %g", i, r.Chemical, r.TotalTons, r.TotalPounds, domain.PoundsPerTon)
		}
	}
	if invalid != ds.UnitErrors {
		p.errorf("dataset reports %d unit errors, found %d flagged rows", ds.UnitErrors, invalid)
	}
	return p
}

func validateJoin(ds *domain.Dataset) *phase {
	p := &phase{name: "Join row preservation"}
	if ds.Join.Rows != len(ds.Records) {
		p.errorf("join saw %d rows, dataset has %d", ds.Join.Rows, len(ds.Records))
	}
	for name, n := range map[string]int{
		"industry": ds.Join.IndustryUnmatched,
		"toxicity": ds.Join.ToxicityUnmatched,
		"facility": ds.Join.FacilityUnmatched,
	} {
		if n > ds.Join.Rows {
			p.errorf("%s unmatched %d exceeds %d rows", name, n, ds.Join.Rows)
		}
	}
	return p
}

func validateConservation(ds *domain.Dataset) *phase {
	p := &phase{name: "Aggregation conservation"}
	_, total := domain.Totals(ds.Records, domain.Filter{})
	dims := append([]domain.Dimension{domain.DimCounty}, domain.GroupDimensions...)
	for _, dim := range dims {
		groups, err := domain.Aggregate(ds.Records, dim, domain.Filter{})
		if err != nil {
			p.errorf("aggregate by %s: %v", dim, err)
			continue
		}
		sum := 0.0
		for _, g := range groups {
			sum += g.Tons
		}
		if math.Abs(sum-total) > tolerance*math.Max(1, total) {
			p.errorf("%s groups sum to %.6f t, records total %.6f t", dim.Label(), sum, total)
		}
	}
	return p
}

func validateRanking(ds *domain.Dataset) *phase {
	p := &phase{name: "Dense ranking"}
	totals := domain.CountyTotals(ds.Records)
	for i, t := range totals {
		if i == 0 {
			if t.Rank != 1 {
				p.errorf("top county %s has rank %d", t.Key, t.Rank)
			}
			continue
		}
		prev := totals[i-1]
		switch {
		case t.Tons > prev.Tons:
			p.errorf("%s (%.3f t) ordered after smaller %s (%.3f t)", t.Key, t.Tons, prev.Key, prev.Tons)
		case t.Tons == prev.Tons && t.Rank != prev.Rank:
			p.errorf("tied %s and %s have ranks %d and %d", prev.Key, t.Key, prev.Rank, t.Rank)
		case t.Tons < prev.Tons && t.Rank != prev.Rank+1:
			p.errorf("%s rank %d does not follow %s rank %d", t.Key, t.Rank, prev.Key, prev.Rank)
		}
	}
	return p
}

func validateCoverage(ds *domain.Dataset) *phase {
	p := &phase{name: "Choropleth coverage"}
	if len(ds.Counties) == 0 {
		p.errorf("no county geometry loaded")
		return p
	}
	known := make(map[string]bool, len(ds.Counties))
	for _, c := range ds.Counties {
		known[c.Key] = true
	}
	for _, t := range domain.CountyTotals(ds.Records) {
		if !known[t.Key] && t.Tons > 0 {
			p.errorf("county %q (%.3f t) has no geometry", t.Key, t.Tons)
		}
	}
	return p
}

// report prints the phase summary and details, returning errValidation if
// any phase failed.
func report(w io.Writer, ds *domain.Dataset, phases []*phase) error {
	fmt.Fprintf(w, "=== %s %d %s integrity ===\n\n", ds.Variant, ds.Year, ds.Region)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintf(w, "\nRecords: %d, counties: %d, issues: %d\n", len(ds.Records), len(ds.Counties), len(ds.Issues))
	for _, issue := range ds.Issues {
		fmt.Fprintf(w, "  ! %s\n", issue)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		return errValidation
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return nil
}
