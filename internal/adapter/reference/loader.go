// Package reference loads the lookup tables emissions are joined against:
// NAICS titles, county boundaries, chemical toxicity values and the
// point-source facility list.
package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
)

// Opener returns the raw content at a file path or URL.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Paths locates each reference table. Empty paths disable that table.
type Paths struct {
	NAICS      string
	Counties   string
	Toxicity   string
	Facilities string
}

// Loader reads reference tables on first use and keeps them for the life of
// the process. A table that fails to load is retried on the next call.
type Loader struct {
	opener Opener
	paths  Paths
	logger *slog.Logger

	mu         sync.Mutex
	industries map[string]string
	counties   []domain.County
	toxicity   map[string]map[string]float64
	toxTypes   []string
	facilities map[string]domain.FacilityInfo
}

// NewLoader creates a reference loader reading through opener.
func NewLoader(opener Opener, paths Paths, logger *slog.Logger) *Loader {
	return &Loader{opener: opener, paths: paths, logger: logger}
}

// Load returns the reference indexes keys needs plus the county layer.
// Failures degrade rather than abort: the table is left empty and a
// description is returned in issues. Loads are serialized under l.mu, so a
// slow fetch blocks concurrent callers until it finishes; tables that failed
// are fetched again on the next call.
func (l *Loader) Load(ctx context.Context, keys domain.JoinKeys) (domain.References, []domain.County, []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var issues []string
	note := func(table string, err error) {
		l.logger.Warn("reference table unavailable", "table", table, "error", err)
		issues = append(issues, fmt.Sprintf("%s reference unavailable: %v", table, err))
	}

	if keys.Industry && l.industries == nil {
		if err := l.loadIndustries(ctx); err != nil {
			note("industry", err)
		}
	}
	if keys.Toxicity && l.toxicity == nil {
		if err := l.loadToxicity(ctx); err != nil {
			note("toxicity", err)
		}
	}
	if keys.Facility && l.facilities == nil {
		if err := l.loadFacilities(ctx); err != nil {
			note("facility", err)
		}
	}
	if l.counties == nil {
		if err := l.loadCounties(ctx); err != nil {
			note("county", err)
		}
	}

	refs := domain.References{
		Industries:    l.industries,
		Toxicity:      l.toxicity,
		ToxicityTypes: l.toxTypes,
		Facilities:    l.facilities,
	}
	return refs, l.counties, issues
}

func (l *Loader) loadIndustries(ctx context.Context) error {
	codes, err := read(ctx, l.opener, l.paths.NAICS, ReadNAICS)
	if err != nil {
		return err
	}
	l.industries = domain.NewIndustryIndex(codes)
	l.logger.Info("naics reference loaded", "codes", len(l.industries))
	return nil
}

func (l *Loader) loadToxicity(ctx context.Context) error {
	values, err := read(ctx, l.opener, l.paths.Toxicity, ReadToxicity)
	if err != nil {
		return err
	}
	l.toxicity, l.toxTypes = domain.NewToxicityIndex(values)
	l.logger.Info("toxicity reference loaded", "chemicals", len(l.toxicity), "types", len(l.toxTypes))
	return nil
}

func (l *Loader) loadFacilities(ctx context.Context) error {
	facilities, err := read(ctx, l.opener, l.paths.Facilities, ReadFacilities)
	if err != nil {
		return err
	}
	l.facilities = domain.NewFacilityIndex(facilities)
	l.logger.Info("facility reference loaded", "facilities", len(l.facilities))
	return nil
}

func (l *Loader) loadCounties(ctx context.Context) error {
	counties, err := read(ctx, l.opener, l.paths.Counties, ReadCounties)
	if err != nil {
		return err
	}
	l.counties = counties
	l.logger.Info("county boundaries loaded", "counties", len(counties))
	return nil
}

// read opens locator and decodes it with parse. Decode failures are
// reported as malformed data.
func read[T any](ctx context.Context, opener Opener, locator string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if locator == "" {
		return zero, errors.New("no path configured")
	}
	rc, err := opener.Open(ctx, locator)
	if err != nil {
		return zero, err
	}
	defer rc.Close()

	v, err := parse(rc)
	if err != nil {
		return zero, domain.Malformed(locator, err)
	}
	return v, nil
}
