// Package metrics registers the Prometheus metrics emitted by the request
// pipeline and streaming engine. Import this package (directly, or via the
// reqllm executor which already does) to make these collectors available
// to a promhttp.Handler mounted by the caller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request-level counters and histograms, labelled by provider and model.
var (
	// RequestsTotal counts pipeline runs labelled by provider, model, and
	// outcome ("success", "error"). Embed records both outcomes; StreamText
	// records only "error", for a request rejected by validation.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqllm_requests_total",
			Help: "Total number of requests processed by the pipeline.",
		},
		[]string{"provider", "model", "status"},
	)

	// RequestDuration observes request latency in seconds. In StreamText it
	// covers the call up to the point the stream has been started, before
	// any chunk is read; in Embed it covers the whole HTTP exchange.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reqllm_request_duration_seconds",
			Help:    "End-to-end request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "model"},
	)

	// TokensInput counts prompt tokens reported by providers. Only Embed
	// adds to it.
	TokensInput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqllm_tokens_input_total",
			Help: "Total prompt tokens reported by providers.",
		},
		[]string{"provider", "model"},
	)

	// TokensOutput is registered for completion tokens reported by
	// providers; no code path in this module adds to it.
	TokensOutput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqllm_tokens_output_total",
			Help: "Total completion tokens reported by providers.",
		},
		[]string{"provider", "model"},
	)

	// StreamErrors counts error chunks observed while a stream is joined
	// into a buffered Response (GenerateText), labelled by provider and the
	// llmerr.Kind string.
	StreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reqllm_stream_errors_total",
			Help: "Total mid-stream errors observed, by provider and error kind.",
		},
		[]string{"provider", "kind"},
	)
)
