package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ctfquest07/ctf-server1-sub000/internal/jwt"
	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// JWTAuth validates the Bearer token and stores identity in the
// request context.
func JWTAuth(mgr *jwt.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "malformed authorization header"})
			return
		}

		claims, err := mgr.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly requires an admin role set by JWTAuth earlier in the chain.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get(ContextRole)
		if !exists || roleAny.(model.Role) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "error": "admin access required"})
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user from the request context.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		return v.(string)
	}
	return ""
}

// IsAdmin reports whether the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(ContextRole)
	return ok && v.(model.Role) == model.RoleAdmin
}
