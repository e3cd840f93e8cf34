package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPMetricsRecorder receives per-request HTTP metrics
type HTTPMetricsRecorder interface {
	RecordHTTPRequest(method, path, statusCode string, duration time.Duration)
	HTTPRequestStarted()
	HTTPRequestFinished()
}

const unmatchedRoute = "unmatched"

// Metrics records request counts, latencies and in-flight requests.
// Requests are labelled by route template to keep label cardinality bounded.
func Metrics(recorder HTTPMetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		recorder.HTTPRequestStarted()
		defer recorder.HTTPRequestFinished()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		recorder.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
