package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	infraRepo "github.com/sangkips/materials-console/internal/infrastructure/repository"
	"github.com/sangkips/materials-console/internal/presentation/http/dto/response"
	"github.com/sangkips/materials-console/pkg/utils"
)

// AuthMiddleware validates the bearer token issued by the business API's
// login flow and scopes the request to its user
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// Validate the token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		// Also scope the request context for repositories
		ctx := infraRepo.WithOwner(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
