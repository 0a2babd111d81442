// Package monitor exposes Prometheus counters for journal checks, key
// rotation and browser scrapes.
package monitor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "journal_metrics"

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checks_total",
		Help:      "Database checks by database and outcome (found, not_found, error).",
	}, []string{"database", "outcome"})

	keyRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scopus_key_rotations_total",
		Help:      "Scopus API key rotations by the status that triggered them.",
	}, []string{"status"})

	scrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Rendered-page scrape duration by site and terminal state.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"site", "state"})
)

// RecordCheck counts one database check outcome.
func RecordCheck(database, outcome string) {
	checksTotal.WithLabelValues(database, outcome).Inc()
}

// RecordKeyRotation counts a move to the next Scopus API key.
func RecordKeyRotation(status int) {
	keyRotations.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveScrape records how long a scrape took to reach its terminal state.
func ObserveScrape(site, state string, took time.Duration) {
	scrapeDuration.WithLabelValues(site, state).Observe(took.Seconds())
}

// RegisterMetricsRoute mounts the Prometheus handler at /metrics.
func RegisterMetricsRoute(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
