package middleware

import (
	"fmt"
	"runtime/debug"

	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					zap.Any("error", rec),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.String("stack", string(debug.Stack())),
				)

				err := apperrors.Internal("internal server error", fmt.Errorf("panic: %v", rec))
				c.AbortWithStatusJSON(err.StatusCode, err.ToResponse())
			}
		}()
		c.Next()
	}
}
