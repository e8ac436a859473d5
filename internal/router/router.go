package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/todayscomfort/backend/internal/gateway"
	"github.com/todayscomfort/backend/internal/handlers"
	"github.com/todayscomfort/backend/internal/interaction"
	"github.com/todayscomfort/backend/internal/middleware"
	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/repositories"
	"github.com/todayscomfort/backend/internal/session"
	"github.com/todayscomfort/backend/pkg/config"
	"github.com/todayscomfort/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, fb *firebase.App) {
	// AutoMigrate PostgreSQL models
	if err := db.Postgres.AutoMigrate(&models.Follow{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	feedRepo := repositories.NewFirestoreFeedRepository(fb.Firestore)
	userRepo := repositories.NewFirestoreUserRepository(fb.Firestore)
	cardRepo := repositories.NewMongoCardRepository(db.Mongo.Database("todayscomfort"))
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)

	sessions := session.NewRedisStore(db.Redis)
	registry := interaction.NewRegistry()

	var gatewayOpts []gateway.Option
	if cfg.GeminiBaseURL != "" {
		gatewayOpts = append(gatewayOpts, gateway.WithBaseURL(cfg.GeminiBaseURL))
	}
	generator := gateway.New(cfg.GeminiAPIKey, cfg.GeminiModel, gateway.PromptStyle(cfg.PromptStyle), gatewayOpts...)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, fb.AuthClient, sessions, cfg.JWTSecret, cfg.FirebaseWebAPIKey)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require a JWT backed by a live session) ---
	api := e.Group("/api/v1")
	api.Use(middleware.SessionGuard(cfg.JWTSecret, sessions))
	log.Println("Session guard applied to /api/v1 group.")

	// Sign-out lives behind the guard; it clears the caller's own session
	authHandler.RegisterSessionRoutes(api)

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo, sessions)
	userHandler.RegisterUserRoutes(api)
	log.Println("User profile routes configured.")

	// Card routes
	cardHandler := handlers.NewCardHandler(generator, cardRepo)
	cardHandler.RegisterCardRoutes(api)
	log.Println("Card routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(feedRepo, userRepo, followRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(feedRepo, registry)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(feedRepo, userRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Live stream routes
	streamHandler := handlers.NewStreamHandler(feedRepo, registry)
	streamHandler.RegisterStreamRoutes(api)
	log.Println("Stream routes configured.")

	log.Println("All routes configured.")
}
