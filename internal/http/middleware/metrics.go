package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/observability"
)

// Metrics records latency and in-flight counts per route template. Paths in
// skip (scrape and probe endpoints) are not observed. Unmatched paths share
// one label to keep series bounded.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		m.IncInflight()
		defer m.DecInflight()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
