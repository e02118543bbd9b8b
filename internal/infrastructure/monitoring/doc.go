// Package monitoring provides Prometheus metrics for the backend.
//
// Metrics cover HTTP requests, WebSocket connections and message flow,
// session document writes and reaping, and sandboxed execution counts,
// durations and in-flight gauge.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
package monitoring
