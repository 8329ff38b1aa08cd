package mw

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"clt400tt-terminal/internal/metrics"
)

// Metrics counts requests per route template, method and status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
