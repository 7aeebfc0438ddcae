/*
Package monitoring exports Prometheus metrics for the PromptDeck backend.

Everything hangs off a single Metrics collector: request counters and
latency histograms fed by the gin middleware, gauges for live terminal
sessions and stream clients, and per-call vectors for the git, tasks and
mcp subsystems. A few hot counters are mirrored under a mutex so the
health endpoint can report them as JSON without scraping /metrics.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "git", "diff")
	defer timer.Stop("success")

The collector is exposed with the stock promhttp handler:

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

Tests construct collectors with NewMetricsWithRegistry to keep their
metric names off the global registry.
*/
package monitoring
