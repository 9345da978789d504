package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"paylink.backend/pkg/jwt"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// IdentityIDKey is the context key for the authenticated identity ID
	IdentityIDKey = "identityId"
	// HandleKey is the context key for the authenticated handle
	HandleKey = "identityHandle"
)

// AuthMiddleware validates the bearer token and puts the identity into the
// request context
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(IdentityIDKey, claims.IdentityID)
		c.Set(HandleKey, claims.Handle)

		c.Next()
	}
}

// GetIdentityID gets the authenticated identity ID from context
func GetIdentityID(c *gin.Context) (uuid.UUID, bool) {
	id, exists := c.Get(IdentityIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return id.(uuid.UUID), true
}

// GetHandle gets the authenticated handle from context
func GetHandle(c *gin.Context) (string, bool) {
	handle, exists := c.Get(HandleKey)
	if !exists {
		return "", false
	}
	return handle.(string), true
}
