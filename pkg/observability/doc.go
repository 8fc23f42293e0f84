/*
Package observability turns tour lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics := observability.NewMetrics()
	eng, _ := waypoint.New(waypoint.WithLifecycleHooks(
		metrics.Hooks().Merge(observability.LogHooks(logger)),
	))
	http.Handle("/metrics", metrics.Handler())
*/
package observability
