// Package metrics holds the Prometheus collectors for the generation pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registry served on the metrics endpoint.
var Registry = prometheus.NewRegistry()

var (
	generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postcraft",
		Name:      "generations_total",
		Help:      "Generation requests by outcome.",
	}, []string{"outcome"})

	modelSelections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postcraft",
		Name:      "model_selections_total",
		Help:      "Model selections by source (primary, legacy, default, listing_failed).",
	}, []string{"source"})

	normalizeStrategies = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "postcraft",
		Name:      "normalize_strategy_total",
		Help:      "Successful response normalizations by winning strategy.",
	}, []string{"strategy"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "postcraft",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of calls to the generative language API.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"operation", "status"})
)

func init() {
	Registry.MustRegister(
		generations,
		modelSelections,
		normalizeStrategies,
		upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Outcome labels for generations_total.
const (
	OutcomeSuccess       = "success"
	OutcomeParseFail     = "parse_fail"
	OutcomeMissingFields = "missing_fields"
	OutcomeMissingKey    = "missing_key"
	OutcomeError         = "error"
)

func RecordGeneration(outcome string) {
	generations.WithLabelValues(outcome).Inc()
}

func RecordSelection(source string) {
	modelSelections.WithLabelValues(source).Inc()
}

func RecordStrategy(strategy string) {
	normalizeStrategies.WithLabelValues(strategy).Inc()
}

// ObserveUpstream records one upstream call. status is ignored when err is set.
func ObserveUpstream(operation string, status int, err error, d time.Duration) {
	label := strconv.Itoa(status)
	if err != nil {
		label = "error"
	}
	upstreamDuration.WithLabelValues(operation, label).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
