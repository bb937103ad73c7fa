package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/repository"
)

// Audit records a trail entry after each successful state-changing
// request: the acting principal, the resource and identifier the route
// addressed, and coarse request facts. Failed requests leave no entry.
func Audit(repo *repository.AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var principalID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			principalID = &user.PrincipalID
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			PrincipalID: principalID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceIDFromRoute(c),
			NewValues:   body,
			IPAddress:   c.ClientIP(),
			UserAgent:   c.GetHeader("User-Agent"),
		})
	}
}

// resourceIDFromRoute pulls the identifier the route addressed, when the
// path carries one. Creations have no ID at this layer.
func resourceIDFromRoute(c *gin.Context) *string {
	for _, param := range []string{"id", "rollNo"} {
		if v := c.Param(param); v != "" {
			return &v
		}
	}
	return nil
}
