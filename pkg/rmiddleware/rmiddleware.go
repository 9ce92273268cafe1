package rmiddleware

import (
	"strings"

	"github.com/DhavalSuthar-24/padel/internal/middleware"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/gin-gonic/gin"
)

// RoleMiddleware admits requests whose authenticated user has one of
// requiredRoles. It must run after middleware.AuthMiddleware.
func RoleMiddleware(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := middleware.GetUserIDFromContext(c); err != nil {
			responses.Unauthorized(c, "Unauthorized: "+err.Error())
			return
		}

		userRole := middleware.GetUserRoleFromContext(c)
		for _, requiredRole := range requiredRoles {
			if strings.EqualFold(userRole, requiredRole) {
				c.Next()
				return
			}
		}

		responses.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminMiddleware is a convenience middleware for admin-only access
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware("admin")
}
