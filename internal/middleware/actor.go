package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// ActorIDHeader names the header clients use to identify the acting user.
	ActorIDHeader = "X-Actor-ID"

	actorIDCtxKey = "actorID"

	// DefaultActorID is recorded on audit fields when no actor header is sent,
	// e.g. for scheduled jobs or local tooling.
	DefaultActorID = "system"
)

// ActorMiddleware resolves the acting user for audit trails. Every posted
// transaction stores who created it, so the resolved ID must never be empty.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorIDHeader)
		if actorID == "" {
			actorID = DefaultActorID
		}
		c.Set(actorIDCtxKey, actorID)
		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting user ID set by ActorMiddleware.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorID, ok := c.Get(actorIDCtxKey)
	if !ok {
		return "", false
	}
	id, ok := actorID.(string)
	return id, ok && id != ""
}
