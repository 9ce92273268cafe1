package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/DhavalSuthar-24/padel/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	AuthUserIDKey   = "auth_user_id"
	AuthUserRoleKey = "auth_user_role"
)

// AuthMiddleware requires a valid Bearer token whose subject still exists.
// The role stored on the user row, not the token claim, is put in the context.
func AuthMiddleware(verifier token.Verifier, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Unauthorized(c, "Authorization header is required")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			responses.Unauthorized(c, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		identity, err := verifier.Verify(bearerToken[1])
		if err != nil {
			responses.Unauthorized(c, "Invalid or expired token: "+err.Error())
			return
		}

		u, err := users.FindByID(c.Request.Context(), identity.UserID)
		if err != nil || u == nil {
			responses.Unauthorized(c, "User not found or inactive")
			return
		}

		c.Set(AuthUserIDKey, u.ID)
		c.Set(AuthUserRoleKey, u.Role)
		c.Next()
	}
}

// GetUserIDFromContext extracts the user ID from the context
func GetUserIDFromContext(c *gin.Context) (uint, error) {
	userID, exists := c.Get(AuthUserIDKey)
	if !exists {
		return 0, errors.New("user ID not found in context")
	}

	uid, ok := userID.(uint)
	if !ok {
		return 0, fmt.Errorf("user ID has unexpected type: %T", userID)
	}

	return uid, nil
}

// GetUserRoleFromContext returns the role AuthMiddleware stored, or "".
func GetUserRoleFromContext(c *gin.Context) string {
	return c.GetString(AuthUserRoleKey)
}
