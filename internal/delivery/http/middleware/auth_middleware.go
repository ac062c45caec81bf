package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/response"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/auth"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
)

// AuthMiddleware resolves the caller from a bearer token (or the auth_token cookie)
// and stores its id, email and role on the context.
func AuthMiddleware(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		var tokenString string

		// 1. Try to get token from Header
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			// 2. Try to get token from Cookie
			cookie, err := c.Cookie("auth_token")
			if err == nil && cookie != "" {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err, "request_id", c.GetString(RequestIDKey))
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		role := domain.Role(claims.Role)
		if err != nil || !role.Valid() {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), userID)
		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), string(role))

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(c *gin.Context) {
		if !allowed[c.GetString(string(domain.KeyUserRole))] {
			response.Error(c, http.StatusForbidden, "Access denied for this role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
