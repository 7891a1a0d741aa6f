package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"weshop/internal/adapter/api"
	"weshop/internal/adapter/api/handler"
	apimiddleware "weshop/internal/adapter/api/middleware"
	"weshop/internal/adapter/api/router"
	"weshop/internal/adapter/repository"
	"weshop/internal/infrastructure/database"
	"weshop/internal/infrastructure/websocket"
	"weshop/internal/usecase"
	"weshop/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	conversationRepo := repository.NewGormConversationRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	wsManager := websocket.NewManager()

	chatUseCase := usecase.NewChatUseCase(conversationRepo, orderRepo, wsManager)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.JWTSecret)

	chatHandler := handler.NewChatHandler(chatUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, chatUseCase)
	healthHandler := handler.NewHealthHandler(db)

	router.SetupChatRouter(e, chatHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupHealthRouter(e, healthHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
