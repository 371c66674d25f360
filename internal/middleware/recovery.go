package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/gateway"
)

// Turns a panic anywhere in the chain into the gateway's internal
// error shape, so callers see the same {"error","kind"} body the
// analyze handlers produce. Detail goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID := c.GetString("request_id")
				log.Printf("[%s] PANIC on %s %s: %v", requestID, c.Request.Method, c.Request.URL.Path, err)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"kind":  gateway.KindInternal.String(),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
