package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/utils"
	"github.com/taskhive/taskhive/pkg/response"
)

const (
	ContextUserID        = "user_id"
	ContextUserEmail     = "user_email"
	ContextWorkspaceID   = "workspace_id"
	ContextWorkspaceRole = "workspace_role"
)

// AuthRequired checks for a valid bearer token and resolves the caller's
// identity into the request context. Unauthenticated callers get a 401 with
// a login redirect hint.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := identityFromRequest(c)
		if !ok {
			response.Unauthorized(c, "not authenticated")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)

		c.Next()
	}
}

// OptionalAuth resolves the caller's identity when a valid token is present
// but never aborts; callers decide policy.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := identityFromRequest(c); ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserEmail, claims.Email)
		}
		c.Next()
	}
}

func identityFromRequest(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUserEmail gets the current user email from context
func GetUserEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextUserEmail); exists {
		return email.(string)
	}
	return ""
}

// GetWorkspaceID gets the resolved workspace ID from context
func GetWorkspaceID(c *gin.Context) uint {
	if id, exists := c.Get(ContextWorkspaceID); exists {
		return id.(uint)
	}
	return 0
}

// GetWorkspaceRole gets the caller's role in the resolved workspace
func GetWorkspaceRole(c *gin.Context) string {
	if role, exists := c.Get(ContextWorkspaceRole); exists {
		return role.(string)
	}
	return ""
}
