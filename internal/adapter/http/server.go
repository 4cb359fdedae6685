package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/city-weather-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineStatus reports readiness and the outcome of the last run.
type PipelineStatus interface {
	sharedobs.ReadinessChecker
	LastResult() (pipeline.Result, bool)
}

// Server exposes health, readiness, metrics, and last-run HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /runs/last routes. Metrics are served from gatherer.
func NewServer(addr string, status PipelineStatus, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(status))
	mux.HandleFunc("GET /runs/last", handleLastRun(status))
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

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

type stepResponse struct {
	Stage      string  `json:"stage"`
	RowsIn     int     `json:"rows_in"`
	RowsOut    int     `json:"rows_out"`
	Rejected   int     `json:"rejected"`
	Output     string  `json:"output,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

type runResponse struct {
	RunID    string         `json:"run_id"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
	Steps    []stepResponse `json:"steps"`
}

func handleLastRun(status PipelineStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		res, ok := status.LastResult()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"status": "no runs yet"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusOK, toRunResponse(res))
	}
}

func toRunResponse(res pipeline.Result) runResponse {
	out := runResponse{
		RunID:    res.RunID,
		Started:  res.Started,
		Finished: res.Finished,
		OK:       res.OK(),
		Steps:    make([]stepResponse, 0, len(res.Steps)),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	for _, st := range res.Steps {
		step := stepResponse{
			Stage:      st.Stage,
			RowsIn:     st.Report.RowsIn,
			RowsOut:    st.Report.RowsOut,
			Rejected:   st.Report.Rejected,
			Output:     st.Report.Output,
			DurationMS: float64(st.Duration) / float64(time.Millisecond),
		}
		if st.Err != nil {
			step.Error = st.Err.Error()
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}
