package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/render"
)

// Report file names inside the output directory.
const (
	reportPage     = "index.html"
	reportChart    = "chart.png"
	reportMap      = "counties.geojson"
	reportWorkbook = "emissions.xlsx"
)

func newReportCmd() *cobra.Command {
	var (
		sel   selection
		out   string
		group string
		top   int
		texas bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a static HTML report with chart, map and workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			q := sel.query()
			if group != "" {
				q.Set(dashboard.ParamGroup, group)
			}
			if top > 0 {
				q.Set(dashboard.ParamTop, strconv.Itoa(top))
			}
			q.Set(dashboard.ParamSETx, strconv.FormatBool(!texas))

			state, ds, err := e.load(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("load %s %d %s: %w", state.Variant, state.Year, state.Region, err)
			}
			v := dashboard.Render(state, e.limits, ds, nil)

			files, err := writeReport(out, v)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	sel.bind(cmd)
	cmd.Flags().StringVar(&out, "out", "report", "output directory")
	cmd.Flags().StringVar(&group, "group", string(domain.DimChemical), "bar chart grouping: CHEMICAL, NAICS Description or FACILITY NAME")
	cmd.Flags().IntVar(&top, "top", domain.DefaultTopN, "number of bars to chart")
	cmd.Flags().BoolVar(&texas, "texas", false, "chart all of Texas instead of SETx")
	return cmd
}

// writeReport renders v into dir and returns the paths written.
func writeReport(dir string, v dashboard.View) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report files are meant to be shared
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	chartSrc := ""
	if len(v.Chart.Bars) > 0 {
		var buf bytes.Buffer
		if err := render.BarChartPNG(&buf, v.Chart); err != nil {
			return nil, err
		}
		if err := write(reportChart, buf.Bytes()); err != nil {
			return nil, err
		}
		chartSrc = reportChart
	}

	data, err := render.NewPageData(v, chartSrc, true)
	if err != nil {
		return nil, err
	}
	if err := write(reportMap, []byte(data.GeoJSON)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.Workbook(&buf, v); err != nil {
		return nil, err
	}
	if err := write(reportWorkbook, buf.Bytes()); err != nil {
		return nil, err
	}

	buf.Reset()
	if err := render.Page(&buf, data); err != nil {
		return nil, err
	}
	if err := write(reportPage, buf.Bytes()); err != nil {
		return nil, err
	}
	return written, nil
}
