package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests no route handled, so scanners cannot blow
// up label cardinality with arbitrary paths.
const unmatchedRoute = "unmatched"

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vecscope",
		Name:      "http_requests_in_flight",
		Help:      "Requests being served",
	})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecscope",
		Name:      "http_requests_total",
		Help:      "Requests served, by route pattern and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vecscope",
		Name:      "http_request_duration_seconds",
		Help:      "Time to serve a request, including streamed scans",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 12),
	}, []string{"method", "route"})

	httpResponseBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecscope",
		Name:      "http_response_bytes_total",
		Help:      "Response body bytes written",
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, httpResponseBytes)
}

// Middleware records per-route request counts, latency and response size.
// Routes are labeled by chi pattern ("/v1/{model}/{op}"), never raw paths.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			httpResponseBytes.WithLabelValues(route).Add(float64(ww.BytesWritten()))
		})
	}
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
