package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
)

// ErrUnknownVariant is returned when a request names a variant that is not registered.
var ErrUnknownVariant = errors.New("unknown variant")

// Request identifies one dataset.
type Request struct {
	Variant string
	Year    int
	Region  string
}

// Key is the cache key for the request.
func (r Request) Key() string {
	return fmt.Sprintf("%s|%d|%s", r.Variant, r.Year, strings.ToUpper(r.Region))
}

// TableSource fetches a raw CSV table from a path or URL.
type TableSource interface {
	FetchTable(ctx context.Context, locator string) (domain.RawTable, error)
}

// ReferenceLoader supplies join indexes and county geometry. Tables that
// cannot be loaded are left empty and described in the returned issues.
type ReferenceLoader interface {
	Load(ctx context.Context, keys domain.JoinKeys) (domain.References, []domain.County, []string)
}

// SummaryPublisher exports county totals of each freshly loaded dataset.
type SummaryPublisher interface {
	Publish(ctx context.Context, summaries []domain.CountySummary) error
}

// DatasetLoader produces a joined dataset for a request.
type DatasetLoader interface {
	Load(ctx context.Context, req Request) (*domain.Dataset, error)
}

// Pipeline fetches, parses, normalizes and joins one emissions table per
// request. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	source    TableSource
	refs      ReferenceLoader
	variants  Variants
	policy    domain.UnitPolicy
	publisher SummaryPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. Pass a nil publisher to disable summary export.
func New(source TableSource, refs ReferenceLoader, variants Variants, policy domain.UnitPolicy,
	publisher SummaryPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		refs:      refs,
		variants:  variants,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a dataset has loaded successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no dataset has been loaded yet")
	}
	return nil
}

// Load builds the dataset for req. Fetch and parse failures are returned as
// *domain.LoadError; reference and unit problems degrade into Dataset.Issues.
func (p *Pipeline) Load(ctx context.Context, req Request) (*domain.Dataset, error) {
	v, err := p.variants.Get(req.Variant)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ds, err := p.load(ctx, v, req)
	if err != nil {
		outcome := string(domain.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		p.metrics.DatasetLoads.WithLabelValues(v.Name, outcome).Inc()
		p.logger.Error("dataset load failed",
			"variant", v.Name, "year", req.Year, "region", req.Region,
			"error_kind", outcome, "error", err)
		return nil, err
	}

	p.metrics.DatasetLoads.WithLabelValues(v.Name, "success").Inc()
	p.metrics.DatasetLoadDuration.WithLabelValues(v.Name).Observe(time.Since(start).Seconds())
	p.metrics.RowsLoaded.WithLabelValues(v.Name).Add(float64(len(ds.Records)))
	p.ready.Store(true)

	p.logger.Info("dataset loaded",
		"variant", v.Name, "year", req.Year, "region", req.Region,
		"rows", len(ds.Records), "unit_errors", ds.UnitErrors, "issues", len(ds.Issues),
		"duration", time.Since(start))

	p.publish(ctx, ds)
	return ds, nil
}

func (p *Pipeline) load(ctx context.Context, v Variant, req Request) (*domain.Dataset, error) {
	locator := v.Resolve(req.Year, req.Region)
	table, err := p.source.FetchTable(ctx, locator)
	if err != nil {
		return nil, err
	}

	opts := v.Parse
	if v.FilterYear {
		opts.Year = req.Year
	}
	records, stats, err := domain.ParseRecords(table, v.Columns, opts)
	if err != nil {
		return nil, domain.Malformed(locator, err)
	}

	ds := &domain.Dataset{
		Variant: v.Name,
		Year:    req.Year,
		Region:  strings.ToUpper(req.Region),
	}
	ds.Issues = append(ds.Issues, parseIssues(stats)...)

	unknownUnits := make(map[string]int)
	for i := range records {
		rec, err := domain.NormalizeUnits(records[i], p.policy)
		if err != nil {
			ds.UnitErrors++
			unknownUnits[rec.Unit]++
		}
		records[i] = rec
	}
	if ds.UnitErrors > 0 {
		p.metrics.UnitErrors.WithLabelValues(v.Name).Add(float64(ds.UnitErrors))
		p.logger.Warn("records with unknown units", "variant", v.Name, "count", ds.UnitErrors, "units", unknownUnits)
		ds.Issues = append(ds.Issues, fmt.Sprintf("%d records have an unrecognized unit of measure and count as zero", ds.UnitErrors))
	}

	refs, counties, refIssues := p.refs.Load(ctx, v.Joins)
	ds.Issues = append(ds.Issues, refIssues...)
	ds.ReferenceIssues = len(refIssues)
	ds.Records, ds.Join = domain.Join(records, refs, v.Joins)
	ds.Counties = counties
	if v.Joins.Toxicity {
		ds.ToxicityTypes = refs.ToxicityTypes
	}
	p.observeJoin(ds.Join)

	ds.LoadedAt = domain.Now()
	return ds, nil
}

func (p *Pipeline) observeJoin(s domain.JoinStats) {
	p.metrics.JoinUnmatched.WithLabelValues("industry").Add(float64(s.IndustryUnmatched))
	p.metrics.JoinUnmatched.WithLabelValues("toxicity").Add(float64(s.ToxicityUnmatched))
	p.metrics.JoinUnmatched.WithLabelValues("facility").Add(float64(s.FacilityUnmatched))
}

// publish exports county summaries. Failures are logged and counted but
// never fail the load.
func (p *Pipeline) publish(ctx context.Context, ds *domain.Dataset) {
	if p.publisher == nil {
		return
	}
	summaries := ds.Summaries()
	if err := p.publisher.Publish(ctx, summaries); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish county summaries failed", "variant", ds.Variant, "year", ds.Year, "error", err)
		return
	}
	p.metrics.SummariesPublished.Add(float64(len(summaries)))
}

// Warm loads req in the background until it succeeds or ctx is cancelled,
// backing off between attempts. It makes the service ready without waiting
// for the first page view.
func Warm(ctx context.Context, loader DatasetLoader, req Request, logger *slog.Logger) {
	// Start at 1s, double each attempt, cap at 1m: the upstream is a public
	// download endpoint that should not be hammered.
	backoff := time.Second
	maxBackoff := time.Minute

	for {
		if _, err := loader.Load(ctx, req); err == nil {
			logger.Info("warm-up complete", "variant", req.Variant, "year", req.Year, "region", req.Region)
			return
		} else if errors.Is(err, ErrUnknownVariant) {
			logger.Error("warm-up aborted", "error", err)
			return
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func parseIssues(s domain.ParseStats) []string {
	var out []string
	if s.UnparseableNumber > 0 {
		out = append(out, fmt.Sprintf("%d numeric cells could not be parsed and count as zero", s.UnparseableNumber))
	}
	if s.NegativeQuantity > 0 {
		out = append(out, fmt.Sprintf("%d records had negative release quantities, treated as zero", s.NegativeQuantity))
	}
	return out
}
