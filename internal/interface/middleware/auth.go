package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"account-service/pkg/apperr"
	"account-service/pkg/helpers"
	"account-service/pkg/response"
)

const (
	CtxUserIDKey    = "authUserID"
	CtxUserEmailKey = "authUserEmail"
)

// Auth verifies the Authorization bearer token and establishes the caller's
// identity for handlers. Verification is purely cryptographic; storage is
// not consulted here, handlers re-validate the identity against the store.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := jwt.Verify(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func abortUnauthorized(c *gin.Context) {
	response.Error[any](c, http.StatusUnauthorized, "Unauthorized", gin.H{"code": apperr.DetailUnauthorized})
	c.Abort()
}
