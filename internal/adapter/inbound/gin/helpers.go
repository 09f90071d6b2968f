package gin

import (
	"github.com/drogueria/backoffice/internal/model"
	apperrors "github.com/drogueria/backoffice/internal/utils/errors"
	"github.com/drogueria/backoffice/internal/utils/middleware"
	"github.com/gin-gonic/gin"
)

// GetActingUserFromContext extracts the acting user from gin context.
// Writes a 401 response and returns false when the session middleware did
// not run.
func GetActingUserFromContext(c *gin.Context) (model.ActingUser, bool) {
	user, ok := middleware.GetActingUser(c)
	if !ok {
		handleError(c, apperrors.Unauthorized(""))
		return model.ActingUser{}, false
	}
	return user, true
}

// requireStaff writes a 403 response for customers.
func requireStaff(c *gin.Context, user model.ActingUser) bool {
	if !user.Role.IsStaff() {
		handleError(c, apperrors.Forbidden("staff role required"))
		return false
	}
	return true
}
