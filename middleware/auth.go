package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys populated from gateway identity headers.
const (
	ActorContextKey = "actorID"
	RoleContextKey  = "role"
	EmailContextKey = "email"
	AdminRole       = "admin"
	OperatorRole    = "store_operator"
)

// RequireAuth rejects requests without a gateway-supplied identity. The
// upstream gateway terminates the session; this service only consumes the
// resulting headers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := identityFrom(c)
		if actorID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets only the listed roles through. It runs after RequireAuth,
// which populates the role from the gateway headers.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleContextKey)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}

// OptionalAuth records identity when present but lets anonymous requests
// through. Customer order creation and tracking validation are anonymous
// operations.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identityFrom(c)
		c.Next()
	}
}

func identityFrom(c *gin.Context) string {
	actorID := c.GetHeader("X-User-ID")
	role := c.GetHeader("X-User-Role")
	email := c.GetHeader("X-User-Email")

	// Cookie fallback (only if behind api-gateway, never publicly exposed)
	if actorID == "" {
		if v, err := c.Cookie("user_id"); err == nil {
			actorID = v
		}
	}
	if role == "" {
		if v, err := c.Cookie("user_role"); err == nil {
			role = v
		}
	}

	if actorID != "" {
		c.Set(ActorContextKey, actorID)
		c.Set(RoleContextKey, role)
		c.Set(EmailContextKey, email)
	}
	return actorID
}

// ActorID returns the authenticated actor id, or "" for anonymous callers.
func ActorID(c *gin.Context) string {
	return c.GetString(ActorContextKey)
}
