package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics holds the Prometheus collectors exported on /metrics.
//
// Metrics:
//   - portfolio_http_requests_total{method,route,status}
//   - portfolio_http_request_duration_seconds{method,route}
//   - portfolio_auth_logins_total{outcome}
//   - portfolio_project_writes_total{operation}
type httpMetrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	projectWrites *prometheus.CounterVec
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func newHTTPMetrics(registerer prometheus.Registerer) *httpMetrics {
	factory := promauto.With(registerer)

	return &httpMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_auth_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"}, // "success" or "failure"
		),
		projectWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_project_writes_total",
				Help: "Successful project writes by operation",
			},
			[]string{"operation"}, // "create", "update" or "delete"
		),
	}
}

func (m *httpMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := wrapStatusWriter(w)

		next.ServeHTTP(srw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(srw.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *httpMetrics) login(success bool) {
	if success {
		m.logins.WithLabelValues("success").Inc()
		return
	}
	m.logins.WithLabelValues("failure").Inc()
}

func (m *httpMetrics) projectWrite(operation string) {
	m.projectWrites.WithLabelValues(operation).Inc()
}
