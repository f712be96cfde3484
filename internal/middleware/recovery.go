package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
)

// Recovery converts panics into 500 responses instead of dropped
// connections.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ZL.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString("request_id")).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"status": "error",
					"error": gin.H{
						"code":    apperrors.CodeStore,
						"message": "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}
