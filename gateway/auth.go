package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/storefront/pkg/config"
)

// basicAuth guards the admin routes with the configured username and bcrypt
// password hash. With no hash configured every request is refused.
func basicAuth(cfg config.AdminConfig, logger *zap.Logger) gin.HandlerFunc {
	hash := []byte(cfg.PasswordHash)

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || len(hash) == 0 ||
			subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) != 1 ||
			bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
			if ok {
				logger.Warn("Admin authentication failed", zap.String("username", user), zap.String("ip", c.ClientIP()))
			}
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
