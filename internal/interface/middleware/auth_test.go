package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/interface/middleware"
	"account-service/pkg/helpers"
)

func newAuthRouter(jwt *helpers.JWTManager) (*gin.Engine, *map[string]string) {
	gin.SetMode(gin.TestMode)
	seen := map[string]string{}
	r := gin.New()
	r.GET("/me", middleware.Auth(jwt), func(c *gin.Context) {
		seen["id"] = c.GetString(middleware.CtxUserIDKey)
		seen["email"] = c.GetString(middleware.CtxUserEmailKey)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &seen
}

func doGet(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthEstablishesIdentity(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, err := jwt.Generate("user-1", "u1@mail.com")
	require.NoError(t, err)

	r, seen := newAuthRouter(jwt)
	w := doGet(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", (*seen)["id"])
	assert.Equal(t, "u1@mail.com", (*seen)["email"])
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsNonBearerScheme(t *testing.T) {
	r, _ := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))

	w := doGet(r, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	r, _ := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))

	w := doGet(r, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", -time.Minute)
	token, err := jwt.Generate("user-1", "u1@mail.com")
	require.NoError(t, err)

	r, _ := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsForgedSignature(t *testing.T) {
	forged, err := helpers.NewJWTManager("other-secret", time.Hour).Generate("user-1", "u1@mail.com")
	require.NoError(t, err)

	r, seen := newAuthRouter(helpers.NewJWTManager("secret", time.Hour))
	w := doGet(r, "Bearer "+forged)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, (*seen)["id"])
}
