package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/materials-console/internal/infrastructure/upstream"
)

// UpstreamCredentials carries the caller's session headers into the request
// context so calls to the business API are made on the caller's behalf
func UpstreamCredentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := upstream.Credentials{
			Cookie:        c.GetHeader("Cookie"),
			Authorization: c.GetHeader("Authorization"),
		}
		if creds.Cookie != "" || creds.Authorization != "" {
			ctx := upstream.WithCredentials(c.Request.Context(), creds)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
