package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	aws_pkg "github.com/tivrax/storefront/pkg/aws"
)

// MetricsMiddleware records request count, latency and error counts to
// CloudWatch. Path is the route template so ids do not explode cardinality.
func MetricsMiddleware(metrics aws_pkg.MetricsRecorder, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil || !metrics.IsEnabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		dimensions := map[string]string{
			"Service": serviceName,
			"Method":  c.Request.Method,
			"Path":    path,
			"Status":  statusCodeToRange(statusCode),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = metrics.RecordCount(ctx, aws_pkg.MetricHTTPRequests, dimensions)
			_ = metrics.RecordLatency(ctx, aws_pkg.MetricHTTPLatency, duration, dimensions)
			if statusCode >= 400 {
				_ = metrics.RecordCount(ctx, aws_pkg.MetricHTTPErrors, dimensions)
				if statusCode < 500 {
					_ = metrics.RecordCount(ctx, aws_pkg.MetricHTTP4xx, dimensions)
				} else {
					_ = metrics.RecordCount(ctx, aws_pkg.MetricHTTP5xx, dimensions)
				}
			}
		}()
	}
}

func statusCodeToRange(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
