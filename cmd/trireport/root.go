package main

import (
	"context"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/tri-dashboard/internal/adapter/reference"
	"github.com/couchcryptid/tri-dashboard/internal/adapter/source"
	"github.com/couchcryptid/tri-dashboard/internal/config"
	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
)

// selection holds the dataset flags shared by every subcommand.
type selection struct {
	variant string
	year    int
	region  string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trireport",
		Short:         "Generate and validate TRI emissions reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReportCmd(), newValidateCmd())
	return root
}

func (s *selection) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.variant, "variant", "", "dataset variant (default DEFAULT_VARIANT)")
	cmd.Flags().IntVar(&s.year, "year", 0, "reporting year (default DEFAULT_YEAR)")
	cmd.Flags().StringVar(&s.region, "region", "", "download region, TX or US (default DEFAULT_REGION)")
}

// query encodes the flags that were set so dashboard.ParseState validates
// and defaults them exactly as the web UI does.
func (s *selection) query() url.Values {
	q := url.Values{}
	if s.variant != "" {
		q.Set(dashboard.ParamVariant, s.variant)
	}
	if s.year != 0 {
		q.Set(dashboard.ParamYear, strconv.Itoa(s.year))
	}
	if s.region != "" {
		q.Set(dashboard.ParamRegion, s.region)
	}
	return q
}

// env is the loaded configuration and wired dataset loader.
type env struct {
	cfg    *config.Config
	limits dashboard.Limits
	loader pipeline.DatasetLoader
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	variants := pipeline.NewVariants(cfg.TRIURLTemplate, cfg.PointSourcePath)
	client := source.NewClient(cfg.FetchTimeout, logger, metrics)
	refs := reference.NewLoader(client, reference.Paths{
		NAICS:      cfg.NAICSPath,
		Counties:   cfg.CountiesPath,
		Toxicity:   cfg.ToxicityPath,
		Facilities: cfg.FacilitiesPath,
	}, logger)

	return &env{
		cfg:    cfg,
		limits: dashboard.NewLimits(cfg, variants),
		loader: pipeline.New(client, refs, variants, cfg.UnitPolicy, nil, logger, metrics),
	}, nil
}

func (e *env) load(ctx context.Context, q url.Values) (dashboard.State, *domain.Dataset, error) {
	state := dashboard.ParseState(q, e.limits)
	ds, err := e.loader.Load(ctx, state.Request())
	return state, ds, err
}
