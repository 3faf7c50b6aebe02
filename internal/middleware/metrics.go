package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records latency and status per route template. Scrapes of the
// metrics endpoint itself are not counted.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		started := time.Now()
		defer func() {
			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
		}()
		c.Next()
	}
}
