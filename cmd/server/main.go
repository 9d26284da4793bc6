package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikeboe/website-researcher/pkg/archive"
	"github.com/mikeboe/website-researcher/pkg/ask"
	"github.com/mikeboe/website-researcher/pkg/clients"
	"github.com/mikeboe/website-researcher/pkg/config"
	"github.com/mikeboe/website-researcher/pkg/research"
	"github.com/mikeboe/website-researcher/pkg/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	llm, err := clients.GoogleAI(ctx, cfg.ReasoningModel, cfg.GoogleApiKey)
	if err != nil {
		log.Fatalf("Failed to create model client: %v", err)
	}

	// The archive and the ask endpoint are optional: without a database the
	// server still runs research jobs.
	var researchOpts []research.Option
	var askSvc *ask.Service
	if cfg.DatabaseURL != "" {
		store, err := archive.Open(ctx, cfg.DatabaseURL, cfg.GoogleApiKey, cfg.EmbeddingModel, slog.Default())
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
		defer store.Close()
		researchOpts = append(researchOpts, research.WithArchive(store))

		askSvc, err = ask.NewService(ctx, store, cfg)
		if err != nil {
			log.Fatalf("Failed to init ask service: %v", err)
		}
	}

	researcher := research.New(cfg, llm, slog.Default(), researchOpts...)
	svc := server.NewService(researcher, slog.Default())
	handler := server.NewHandler(svc, askSvc)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all for dev
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(r)

	fmt.Printf("Server starting on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
