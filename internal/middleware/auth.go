package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khetbazaar/estate-admin-api/internal/auth"
)

const (
	// UserIDKey is the context key for the authenticated user's id
	UserIDKey = "user_id"
	// UserRoleKey is the context key for the authenticated user's role
	UserRoleKey = "user_role"
)

// RequireAdmin creates a middleware that validates the bearer access token
// and rejects requests whose token does not carry the admin role.
func RequireAdmin(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = authHeader[7:]
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Token validation failed", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		if claims.Role != auth.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized as admin"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// GetUserID retrieves the authenticated user's id from the Gin context.
// Returns 0 if not set.
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(UserIDKey); exists {
		if userID, ok := id.(int64); ok {
			return userID
		}
	}
	return 0
}
