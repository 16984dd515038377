package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/clients"
	"storefront-service/common/auth"
)

const (
	UserContextKey  = "user_id"
	EmailContextKey = "email"
	RoleContextKey  = "role"
)

// SessionValidator turns a bearer token into a session identity.
type SessionValidator interface {
	Session(token string) (auth.Session, error)
}

// AuthMiddleware requires a valid session token. The user id, email and role
// are stored on the gin context, and the raw token on the request context so
// backend calls can forward it.
func AuthMiddleware(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		session, err := validator.Session(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserContextKey, session.UserID)
		c.Set(EmailContextKey, session.Email)
		c.Set(RoleContextKey, session.Role)
		c.Request = c.Request.WithContext(clients.WithToken(c.Request.Context(), session.Token))
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleContextKey) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, error) {
	val, exists := c.Get(UserContextKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		return "", errors.New("user ID has invalid type in context")
	}
	return userID, nil
}

// GetEmail returns the session email, or "" when the token carried none.
func GetEmail(c *gin.Context) string {
	return c.GetString(EmailContextKey)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		return ""
	}
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
