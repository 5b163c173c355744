package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
	"github.com/gearguard/gearguard-api/pkg/response"
)

// RequireRoles allows the request through when the caller holds one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return guard(func(role models.UserRole) bool {
		return models.HasRole(role, roles)
	})
}

// RequireMinimumRole allows callers at or above min in the role hierarchy.
func RequireMinimumRole(min models.UserRole) gin.HandlerFunc {
	return guard(func(role models.UserRole) bool {
		return role.AtLeast(min)
	})
}

func guard(allowed func(models.UserRole) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allowed(claims.Role) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
