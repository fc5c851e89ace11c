package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"account-service/config"
	userapp "account-service/internal/application"
	pginfra "account-service/internal/infrastructure/postgres"
	"account-service/pkg/helpers"
)

// Batch user-creation job: builds a set of fixture accounts and persists them
// through the upsert path. Runs outside any request, so the repository falls
// back to direct pool connections.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)
	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	svc := userapp.NewService(repo, jwtManager, logger)

	emails, err := svc.CreateFixtureUsers(ctx, cfg.SeedUserCount, os.Getenv("ENV_NAME"))
	if err != nil {
		log.Fatalf("failed to create fixture users: %v", err)
	}

	for _, e := range emails {
		fmt.Printf("seeded user: %s\n", e)
	}
}
