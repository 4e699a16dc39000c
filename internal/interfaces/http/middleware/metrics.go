package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestObserver records served requests. telemetry.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	InFlight() prometheus.Gauge
}

// HTTPMetrics records latency by route template and the in-flight gauge.
// A nil observer disables the middleware.
func HTTPMetrics(obs RequestObserver) gin.HandlerFunc {
	if obs == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	inFlight := obs.InFlight()

	return func(c *gin.Context) {
		inFlight.Inc()
		start := time.Now()
		defer func() {
			inFlight.Dec()
			obs.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
