/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Both are plain domain.LifecycleHooks and can be combined with Chain:

	metrics := observability.NewMetrics()
	hooks := observability.Chain(metrics.Hooks(), observability.LogHooks(logger))
	eng, _ := quiver.New(quiver.WithLifecycleHooks(hooks))
	http.Handle("/metrics", metrics.Handler())
*/
package observability
