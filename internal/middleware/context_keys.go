package middleware

import "github.com/gin-gonic/gin"

// actorKey is the key used to store the acting identity in the Gin context.
const actorKey = contextKey("actor")

// DefaultActor is recorded in audit fields when no caller identity was
// supplied. Authentication is handled upstream of this service.
const DefaultActor = "api"

// ActorMiddleware copies the optional X-Actor-ID header into the Gin context
// for audit trails.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader("X-Actor-ID"); actor != "" {
			c.Set(string(actorKey), actor)
		}
		c.Next()
	}
}

// GetActorFromContext retrieves the acting identity from the Gin context,
// falling back to DefaultActor.
func GetActorFromContext(c *gin.Context) string {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		return DefaultActor
	}
	actor, ok := actorVal.(string)
	if !ok || actor == "" {
		return DefaultActor
	}
	return actor
}
