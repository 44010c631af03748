package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"elderease/internal/config"
	"elderease/internal/handler"
	"elderease/internal/repository"
	"elderease/internal/services"
	"elderease/internal/utils"
)

func main() {
	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing MongoDB connection...")
		return mongoClient.Disconnect(ctx)
	})

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("Invalid Redis URL:", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	minioClient, err := utils.NewMinioClient(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket)
	if err != nil {
		log.Fatal("Failed to init MinIO:", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	notificationService := services.NewNotificationService(notificationRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, notificationService, rdb)
	chatService := services.NewChatService(messageRepo, taskRepo, notificationService)
	ratingService := services.NewRatingService(userRepo, taskRepo, notificationService, rdb)
	mediaService := services.NewMediaService(minioClient, cfg.MinioBucket)

	taskHandler := handler.NewTaskHandler(taskService)
	chatHandler := handler.NewChatHandler(chatService)
	userHandler := handler.NewUserHandler(ratingService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	collectionHandler := handler.NewCollectionHandler(collectionRepo)

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tasks := router.Group("/tasks")
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.GetTasks)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.PATCH("/:id/archive", taskHandler.ArchiveTask)
		tasks.GET("/:id/messages", chatHandler.ListMessages)
		tasks.POST("/:id/messages", chatHandler.PostMessage)
	}
	router.PATCH("/users/:id/rate", userHandler.RateUser)
	router.GET("/notifications", notificationHandler.GetNotifications)
	router.PATCH("/notifications/:id", notificationHandler.MarkAsRead)
	router.POST("/uploads", mediaHandler.Upload)
	router.GET("/uploads/:id", mediaHandler.Serve)

	// Any other collection path falls through to the generic store router.
	router.NoRoute(collectionHandler.Fallback)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("ElderEase backend running on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Shutting down HTTP server...")
		return server.Shutdown(ctx)
	})

	select {}
}
