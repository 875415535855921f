// Package metrics exposes Prometheus collectors for the harvest engine.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingPagesTotal     prometheus.Counter
	articlesTotal         *prometheus.CounterVec
	fetchRequestsTotal    *prometheus.CounterVec
	fetchRetriesTotal     prometheus.Counter
	politenessWaitSeconds prometheus.Histogram

	once sync.Once
)

// Article outcome labels recorded by ObserveArticle.
const (
	ResultNew     = "new"
	ResultUpdated = "updated"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		listingPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_listing_pages_total",
				Help: "Total number of listing pages parsed.",
			},
		)

		articlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_articles_total",
				Help: "Total number of article cards processed, labeled by result.",
			},
			[]string{"result"},
		)

		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_fetch_requests_total",
				Help: "Total number of HTTP fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_fetch_retries_total",
				Help: "Total number of fetch retry attempts.",
			},
		)

		politenessWaitSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_politeness_wait_seconds",
				Help:    "Histogram of politeness delays taken before requests.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveListingPage increments the listing page counter.
func ObserveListingPage() {
	listingPagesTotal.Inc()
}

// ObserveArticle increments the article counter for the given result.
func ObserveArticle(result string) {
	articlesTotal.WithLabelValues(result).Inc()
}

// ObserveFetch increments the fetch counter for the given outcome.
func ObserveFetch(outcome string) {
	fetchRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetchRetry increments the retry counter.
func ObserveFetchRetry() {
	fetchRetriesTotal.Inc()
}

// ObservePolitenessWait records the duration of a pre-request pause.
func ObservePolitenessWait(d time.Duration) {
	politenessWaitSeconds.Observe(d.Seconds())
}
