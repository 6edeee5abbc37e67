// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal  *prometheus.CounterVec
	robotsDeniedTotal   *prometheus.CounterVec
	rateLimitDelay      prometheus.Histogram
	recordsTotal        *prometheus.CounterVec
	careersLookupsTotal *prometheus.CounterVec

	once sync.Once
)

// Init registers the harvester collectors against the default registry.
// It is safe to call multiple times.
func Init() {
	once.Do(func() {
		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_fetch_requests_total",
				Help: "Outbound fetch attempts, labeled by method and outcome.",
			},
			[]string{"method", "outcome"},
		)
		robotsDeniedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_robots_denied_total",
				Help: "Requests denied by robots policy, labeled by host.",
			},
			[]string{"host"},
		)
		rateLimitDelay = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_rate_limit_delay_seconds",
				Help:    "Delay introduced by the shared rate limiter.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)
		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_records_total",
				Help: "Organization records harvested, labeled by source.",
			},
			[]string{"source"},
		)
		careersLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_careers_lookups_total",
				Help: "Careers page lookups, labeled by how they resolved.",
			},
			[]string{"result"},
		)
	})
}

// ObserveFetch records one outbound request attempt.
func ObserveFetch(method, outcome string) {
	if fetchRequestsTotal == nil {
		return
	}
	fetchRequestsTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveRobotsDenied records one robots-policy denial for host.
func ObserveRobotsDenied(host string) {
	if robotsDeniedTotal == nil {
		return
	}
	robotsDeniedTotal.WithLabelValues(host).Inc()
}

// ObserveRateLimitDelay records time spent waiting on the shared limiter.
func ObserveRateLimitDelay(d time.Duration) {
	if rateLimitDelay == nil {
		return
	}
	rateLimitDelay.Observe(d.Seconds())
}

// ObserveRecord counts one harvested record for source.
func ObserveRecord(source string) {
	if recordsTotal == nil {
		return
	}
	recordsTotal.WithLabelValues(source).Inc()
}

// ObserveCareersLookup counts one classifier run; result is one of
// "link", "probe" or "none".
func ObserveCareersLookup(result string) {
	if careersLookupsTotal == nil {
		return
	}
	careersLookupsTotal.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus scrape handler mounted on a chi router.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Serve starts a metrics listener on addr. It returns the server so the
// caller can shut it down; errors from the listener are delivered on errc.
func Serve(addr string, errc chan<- error) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if errc != nil {
				errc <- err
			}
		}
	}()
	return srv
}
