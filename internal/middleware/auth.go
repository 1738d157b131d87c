package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
)

// HeaderCompanyID carries the tenant resolved by the upstream auth layer.
// Account management and session issuance live outside this service; the
// gateway forwards the company of the authenticated user in this header.
const HeaderCompanyID = "X-Company-ID"

// AuthConfig holds the authentication middleware configuration
type AuthConfig struct {
	TokenAPI string
}

// BearerAuth validates the static API bearer token
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid format, expected: Bearer {token}",
			})
			return
		}

		if parts[1] != cfg.TokenAPI {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token",
			})
			return
		}

		c.Next()
	}
}

// CompanyID requires the tenant header and attaches it to the request
// context and logger.
func CompanyID() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetHeader(HeaderCompanyID)
		if companyID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "missing " + HeaderCompanyID + " header",
			})
			return
		}

		ctx := logger.WithCompanyID(c.Request.Context(), companyID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetCompanyID reads the tenant from the request context
func GetCompanyID(c *gin.Context) string {
	return logger.GetCompanyID(c.Request.Context())
}
