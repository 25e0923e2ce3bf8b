package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/response"
)

const (
	ContextUserKey  = "user"
	ContextTokenKey = "token"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func Middleware(provider Provider, logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token != "" {
			user, err := provider.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set(ContextUserKey, user)
				c.Set(ContextTokenKey, token)
				c.Next()
				return
			}
			if errors.Is(err, internal.ErrStore) {
				logger.Errorf("[request_id=%s] token check failed: %v", c.GetString("request_id"), err)
				c.AbortWithStatusJSON(http.StatusBadGateway, response.Fail(http.StatusBadGateway, "identity service unavailable", ""))
				return
			}
			logger.Debugf("[request_id=%s] rejected token: %v", c.GetString("request_id"), err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
	}
}

// CurrentUser returns the user stored by Middleware.
func CurrentUser(c *gin.Context) *internal.User {
	return c.MustGet(ContextUserKey).(*internal.User)
}
