package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/config"
	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/handlers"
	authmw "github.com/avaldes/remarket-api/internal/middleware"
	"github.com/avaldes/remarket-api/internal/services"
	"github.com/avaldes/remarket-api/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	keyCache, err := cognito.NewKeyCache(
		cfg.Cognito.JWKSURL(),
		cfg.Cognito.JWKSRefreshInterval,
		cfg.Cognito.JWKSHTTPTimeout,
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to initialize JWKS cache: %v", err)
	}

	verifier := cognito.NewVerifier(keyCache, cfg.Cognito.IssuerURL(), cfg.Cognito.AppClientID, cfg.Cognito.JWTLeeway, logger)
	hostedUI := cognito.NewHostedUI(cfg.Cognito)

	imageStore := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)

	userService := services.NewUserService(db, logger)
	categoryService := services.NewCategoryService(db, logger)
	listingService := services.NewListingService(db, imageStore, logger)
	notificationService := services.NewNotificationService(db, logger)
	emailService := services.NewEmailService(cfg.SMTP)

	authHandler := handlers.NewAuthHandler(hostedUI, verifier, userService, emailService, logger)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	listingHandler := handlers.NewListingHandler(listingService, userService, notificationService, emailService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/login", authHandler.GetConsentURL)
	auth.Get("/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)

	api.Get("/categories", categoryHandler.List)
	api.Get("/categories/:id", categoryHandler.Get)
	api.Get("/listings", listingHandler.List)
	api.Get("/listings/:id", listingHandler.Get)

	protected := api.Group("")
	protected.Use(authmw.Auth(verifier, userService, logger))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Post("/listings", listingHandler.Create)
	protected.Get("/users/me/listings", listingHandler.MyListings)
	protected.Patch("/listings/:id", listingHandler.Update)
	protected.Delete("/listings/:id", listingHandler.Delete)
	protected.Post("/listings/:id/images", listingHandler.UploadImages)

	protected.Get("/notifications", notificationHandler.List)
	protected.Post("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Post("/notifications/read-all", notificationHandler.MarkAllRead)

	admin := api.Group("/admin")
	admin.Use(authmw.Auth(verifier, userService, logger))
	admin.Use(authmw.RequireAdmin(logger))

	admin.Post("/users/:id/activate", userHandler.Activate)
	admin.Post("/users/:id/block", userHandler.Block)

	admin.Post("/categories", categoryHandler.Create)
	admin.Patch("/categories/:id", categoryHandler.Update)
	admin.Delete("/categories/:id", categoryHandler.Delete)

	admin.Get("/listings/pending", listingHandler.ModerationQueue)
	admin.Post("/listings/:id/status", listingHandler.Moderate)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func logLevel(cfg *config.Config) slog.Level {
	if cfg.IsProduction() {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
