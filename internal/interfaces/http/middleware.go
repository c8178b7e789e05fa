package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
)

const actorKey = "actor"

// actorMiddleware resolves the acting user from the request headers
// the authenticating proxy sets. Requests without a complete identity
// are rejected before reaching any handler.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			abortUnauthenticated(c, "missing or invalid X-User-ID header")
			return
		}
		orgID, err := strconv.ParseInt(c.GetHeader("X-Organization-ID"), 10, 64)
		if err != nil || orgID <= 0 {
			abortUnauthenticated(c, "missing or invalid X-Organization-ID header")
			return
		}
		role := entity.Role(c.GetHeader("X-Role"))
		if !role.IsValid() {
			abortUnauthenticated(c, "missing or invalid X-Role header")
			return
		}

		c.Set(actorKey, entity.Actor{
			UserID:         userID,
			OrganizationID: orgID,
			Role:           role,
		})
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Success: false,
		Error:   msg,
	})
}

// actorFrom returns the actor the middleware stored on the context.
func actorFrom(c *gin.Context) entity.Actor {
	return c.MustGet(actorKey).(entity.Actor)
}
