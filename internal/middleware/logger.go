package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logs one line per request including the identity and tier that
// IdentityTag resolved (read after c.Next(), so the tag has run by
// then). Anonymous requests log a dash.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		requestID := c.GetString("request_id")

		caller := c.GetString("identity")
		if caller == "" {
			caller = "-"
		}
		tier := c.GetString("tier")
		if tier == "" {
			tier = "-"
		}

		log.Printf("[%s] %s %s - %d - %v - %s - identity=%s tier=%s",
			requestID,
			method,
			path,
			statusCode,
			latency,
			c.ClientIP(),
			caller,
			tier,
		)
	}
}
