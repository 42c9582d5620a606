package observability

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "holydeo", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "holydeo", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	FeedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "holydeo", Name: "feed_requests_total", Help: "Outbound iCal feed fetches."},
		[]string{"status"},
	)
	FeedLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "holydeo", Name: "feed_request_duration_seconds",
			Help:    "Outbound feed fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "holydeo", Name: "sync_runs_total", Help: "Feed import runs."},
		[]string{"result"}, // result: ok|partial|fetch_error|parse_error
	)
	SyncImportedDates = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "holydeo", Name: "sync_imported_dates_total", Help: "Blocked dates upserted by imports."},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "holydeo", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, FeedRequests, FeedLatency, SyncRuns, SyncImportedDates, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveFeed records one outbound fetch; status 0 means the request never
// got an HTTP answer.
func ObserveFeed(status int, dur time.Duration) {
	FeedRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	FeedLatency.Observe(dur.Seconds())
}

func ObserveSync(result string, imported int) {
	SyncRuns.WithLabelValues(result).Inc()
	if imported > 0 {
		SyncImportedDates.Add(float64(imported))
	}
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
