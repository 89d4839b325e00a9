package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/auth"
	"github.com/gunalchandran/grocery-backend/models"
)

const (
	ctxEmail = "email"
	ctxRole  = "role"
)

// ValidateToken requires a valid bearer token and stores its subject and
// role in the context. The token is read from the Authorization header,
// with or without the "Bearer " prefix, or from ?token= for websocket
// clients that cannot set headers.
func ValidateToken(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ctxEmail, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	return c.Query("token")
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// It must run after ValidateToken.
func RequireAdmin(c *gin.Context) {
	if !IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		c.Abort()
		return
	}
	c.Next()
}

// CurrentEmail returns the authenticated subject.
func CurrentEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == models.RoleAdmin
}
