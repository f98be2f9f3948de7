package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"turtlecoin/internal/adapter/api"
	"turtlecoin/internal/adapter/api/handler"
	apimiddleware "turtlecoin/internal/adapter/api/middleware"
	"turtlecoin/internal/adapter/api/router"
	"turtlecoin/internal/adapter/repository"
	"turtlecoin/internal/infrastructure/sse"
	"turtlecoin/internal/usecase"
	"turtlecoin/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		log.Printf("Using service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)

	hub := sse.NewHub()

	userUseCase := usecase.NewUserUseCase(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	listingUseCase := usecase.NewListingUseCase(listingRepo, userRepo)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, listingRepo, hub)

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(cfg.JWTSecret)

	chatHandler := handler.NewChatHandler(chatUseCase)
	notificationHandler := handler.NewNotificationHandler(hub, time.Duration(cfg.SSEKeepaliveSecs)*time.Second)
	userHandler := handler.NewUserHandler(userUseCase)
	listingHandler := handler.NewListingHandler(listingUseCase)

	router.Setup(e, authMiddleware, chatHandler, notificationHandler, userHandler, listingHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
