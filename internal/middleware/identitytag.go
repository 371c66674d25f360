package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
)

// Tags the request context with the resolved identity and tier for
// logging. Best-effort only: unauthenticated requests pass through and
// fail later at the gateway.
func IdentityTag(resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, tier, err := resolver.Resolve(c.Request.Header); err == nil {
			c.Set("identity", string(id))
			c.Set("tier", string(tier))
		}

		c.Next()
	}
}
