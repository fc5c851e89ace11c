package router

import (
	userapp "account-service/internal/application"
	"account-service/internal/container"
	pginfra "account-service/internal/infrastructure/postgres"
	handlers "account-service/internal/interface/http"
	"account-service/internal/interface/middleware"
	"account-service/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup.
func InitModules(r *Registry) {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := userapp.NewService(
		repo,
		container.GetJWT(),
		container.GetLogger(),
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetLogger(),
		container.GetRabbitPub(),
	)

	tx := middleware.Transaction(container.GetPGPool(), container.GetLogger())

	r.Add(modules.New(handler, container.GetJWT(), tx))
}
