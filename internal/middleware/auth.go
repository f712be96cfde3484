package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/appointment-api/internal/model"
	"github.com/mamacare/appointment-api/pkg/auth"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
)

const actorKey = "actor"

// Auth validates the bearer token and stores the decoded actor in the
// request context. Requests without a valid token never reach a handler.
func Auth(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := authSvc.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(actorKey, *actor)
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor stored by Auth.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status": "error",
		"error": gin.H{
			"code":    apperrors.CodeAuth,
			"message": msg,
		},
	})
}
