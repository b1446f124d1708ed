package scores

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the score service collectors.
//
//   - scores_http_request_duration_seconds{method,path,status}
//   - scores_http_requests_inflight
//   - scores_submissions_total, scores_renames_total
//   - scores_ws_clients
type Metrics struct {
	registry    *prometheus.Registry
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	submissions prometheus.Counter
	renames     prometheus.Counter
	wsClients   prometheus.Gauge
}

// NewMetrics registers the collectors in a fresh registry, so several
// servers (or tests) can live in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scores",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scores",
			Name:      "http_requests_inflight",
			Help:      "Requests currently being served.",
		}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scores",
			Name:      "submissions_total",
			Help:      "Scores stored.",
		}),
		renames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scores",
			Name:      "renames_total",
			Help:      "Names corrected after submission.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scores",
			Name:      "ws_clients",
			Help:      "Connected leaderboard subscribers.",
		}),
	}
	m.registry.MustRegister(
		m.reqDuration, m.reqInflight, m.submissions, m.renames, m.wsClients,
		prometheus.NewGoCollector(),
	)
	return m
}

// Middleware observes every request under its chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.reqInflight.Inc()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.reqInflight.Dec()

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.reqDuration.WithLabelValues(r.Method, path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
