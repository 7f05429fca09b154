package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/tri-dashboard/internal/dashboard"
	"github.com/couchcryptid/tri-dashboard/internal/domain"
	"github.com/couchcryptid/tri-dashboard/internal/observability"
	"github.com/couchcryptid/tri-dashboard/internal/pipeline"
	"github.com/couchcryptid/tri-dashboard/internal/render"
)

// Deps are the collaborators the dashboard routes need.
type Deps struct {
	Loader  pipeline.DatasetLoader
	Ready   sharedobs.ReadinessChecker
	Limits  dashboard.Limits
	Metrics *observability.Metrics
}

// Server exposes the dashboard page, its JSON API, the chart image, and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates the dashboard HTTP server. writeTimeout must cover a
// cold dataset load, so it should exceed the upstream fetch timeout.
func NewServer(addr string, writeTimeout time.Duration, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /api/counties", s.handleCounties)
	mux.HandleFunc("GET /api/groups", s.handleGroups)
	mux.HandleFunc("GET /api/pivot", s.handlePivot)
	mux.HandleFunc("GET /api/choropleth", s.handleChoropleth)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// view loads the dataset the request's state selects and renders it.
func (s *Server) view(r *http.Request) dashboard.View {
	state := dashboard.ParseState(r.URL.Query(), s.deps.Limits)
	ds, err := s.deps.Loader.Load(r.Context(), state.Request())
	if err != nil {
		s.logger.Warn("dataset unavailable",
			"variant", state.Variant, "year", state.Year, "region", state.Region,
			"kind", domain.KindOf(err), "error", err)
	}
	v := dashboard.Render(state, s.deps.Limits, ds, err)
	if v.PivotReason != "" {
		s.deps.Metrics.PivotFailures.WithLabelValues(v.PivotReason).Inc()
	}
	return v
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)

	chartSrc := ""
	if len(v.Chart.Bars) > 0 {
		chartSrc = "/chart.png?" + v.State.Query().Encode()
	}
	data, err := render.NewPageData(v, chartSrc, false)
	if err != nil {
		s.internalError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, data); err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client disconnects are not actionable
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if !v.Loaded() {
		writeLoadError(w, v)
		return
	}

	var buf bytes.Buffer
	if err := render.BarChartPNG(&buf, v.Chart); err != nil {
		if errors.Is(err, render.ErrNoBars) {
			sharedobs.WriteJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
			return
		}
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client disconnects are not actionable
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if !v.Loaded() {
		writeLoadError(w, v)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, countiesBody{
		Meta:            newMeta(v),
		StatewidePounds: v.StatewidePounds,
		StatewideTons:   v.StatewideTons,
		SETxTons:        v.RegionTons,
		Counties:        v.Counties,
	})
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if !v.Loaded() {
		writeLoadError(w, v)
		return
	}
	if v.ChartError != "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: v.ChartError})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, groupsBody{Meta: newMeta(v), Chart: v.Chart})
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if !v.Loaded() {
		writeLoadError(w, v)
		return
	}
	if v.Pivot == nil {
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorBody{Error: v.PivotError, Reason: v.PivotReason})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, pivotBody{Meta: newMeta(v), Options: v.PivotOptions, Pivot: v.Pivot})
}

func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	v := s.view(r)
	if !v.Loaded() {
		writeLoadError(w, v)
		return
	}
	b, err := render.ChoroplethGeoJSON(v.Choropleth)
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(b) //nolint:errcheck // client disconnects are not actionable
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("render failed", "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

// writeLoadError reports a failed dataset load as a bad gateway: the
// upstream source was unreachable or returned unusable data.
func writeLoadError(w http.ResponseWriter, v dashboard.View) {
	sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Error: v.Error, ErrorKind: v.ErrorKind})
}
