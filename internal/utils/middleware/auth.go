package middleware

import (
	"errors"
	"strings"

	"github.com/drogueria/backoffice/internal/domain/access"
	"github.com/drogueria/backoffice/internal/model"
	"github.com/drogueria/backoffice/internal/port/outbound"
	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/drogueria/backoffice/internal/utils/requestctx"
	"github.com/gin-gonic/gin"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// SessionKey is the context key for the session snapshot.
	SessionKey = "session"
	// ActingUserKey is the context key for the acting user.
	ActingUserKey = "acting_user"
)

// Session returns a middleware that resolves the acting user.
//
// Every request must carry a bearer token. The session snapshot the role
// is derived from is the profile the backend returns for that token, so
// nothing the client asserts about itself is trusted. The token is
// forwarded to the backend on every call made while serving the request.
func Session(resolver access.SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortWithError(c, apperrors.Unauthorized("authorization required"))
			return
		}

		session, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, sessionError(err))
			return
		}

		user := access.ActingUserFrom(session)
		c.Set(SessionKey, session)
		c.Set(ActingUserKey, user)
		c.Request = c.Request.WithContext(requestctx.WithAuthToken(c.Request.Context(), token))

		c.Next()
	}
}

func sessionError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, outbound.ErrSessionExpired):
		return apperrors.SessionExpired("the session has expired, sign in again").WithError(err)
	case errors.Is(err, outbound.ErrForbidden):
		return apperrors.Forbidden("the backend denied this session").WithError(err)
	default:
		return apperrors.BadGateway("could not verify the session").WithError(err)
	}
}

// GetActingUser returns the acting user set by Session.
func GetActingUser(c *gin.Context) (model.ActingUser, bool) {
	v, exists := c.Get(ActingUserKey)
	if !exists {
		return model.ActingUser{}, false
	}
	user, ok := v.(model.ActingUser)
	return user, ok
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	auth := c.GetHeader(AuthorizationHeader)
	if auth == "" {
		return ""
	}
	if !strings.HasPrefix(auth, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, BearerPrefix))
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(apperrors.GetStatusCode(err), err.ToResponse())
}
