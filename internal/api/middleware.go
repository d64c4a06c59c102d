package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrabook/pitch-booking-backend/internal/auth"
)

// RequireRole ensures the authenticated user holds one of the given roles.
// It MUST be used after auth.AuthRequired middleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := auth.GetUserRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
	}
}
