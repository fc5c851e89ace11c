package modules

import (
	"github.com/gin-gonic/gin"

	handlers "account-service/internal/interface/http"
	"account-service/internal/interface/middleware"
	"account-service/pkg/helpers"
)

// Module wires the user HTTP handlers into routes. Every route runs inside
// the per-request transaction; the protected ones additionally pass the
// bearer-token guard.
//
// Public:    POST /api/v1/users/signup, POST /api/v1/users/signin
// Protected: GET/PUT/DELETE /api/v1/users/:id
type Module struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Tx      gin.HandlerFunc
}

func New(h *handlers.UserHandler, jwt *helpers.JWTManager, tx gin.HandlerFunc) *Module {
	return &Module{Handler: h, JWT: jwt, Tx: tx}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	users.POST("/signup", m.Tx, m.Handler.Signup)
	users.POST("/signin", m.Tx, m.Handler.Signin)

	// Guard first so a rejected token never opens a transaction.
	auth := users.Group("/")
	auth.Use(middleware.Auth(m.JWT), m.Tx)
	{
		auth.GET("/:id", m.Handler.GetUser)
		auth.PUT("/:id", m.Handler.UpdateUser)
		auth.DELETE("/:id", m.Handler.DeleteUser)
	}
}
