package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	accountclient "github.com/sonamsamdupkhangsar/account-rest-service/internal/client"
	accountcmd "github.com/sonamsamdupkhangsar/account-rest-service/internal/command"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/config"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/events"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/handler"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/middleware"
	accountqry "github.com/sonamsamdupkhangsar/account-rest-service/internal/query"
	redisClient "github.com/sonamsamdupkhangsar/account-rest-service/internal/redis"
	"github.com/sonamsamdupkhangsar/account-rest-service/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Redis connection (read model store + event streaming)
	redis, err := redisClient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client)

	accountRepo := repository.NewAccountRepository(db)
	secretRepo := repository.NewPasswordSecretRepository(db)
	readRepo := repository.NewAccountReadRepository(db, redis.Client)

	remote := accountclient.NewRemoteServices(accountclient.Endpoints{
		AuthenticationActivate: cfg.AuthenticationActivateEndpoint,
		AuthenticationDelete:   cfg.AuthenticationDeleteEndpoint,
		AuthenticationPassword: cfg.AuthenticationPasswordEndpoint,
		UserActivate:           cfg.UserActivateEndpoint,
		UserDelete:             cfg.UserDeleteEndpoint,
		Email:                  cfg.EmailEndpoint,
	}, cfg.EmailFrom)

	commandSvc := accountcmd.NewAccountCommandService(cfg, accountRepo, secretRepo, readRepo, remote, publisher)
	querySvc := accountqry.NewAccountQueryService(readRepo, secretRepo)

	accountHandler := handler.NewAccountHandler(commandSvc, querySvc)

	// Setup router
	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	accounts := router.Group("/accounts")
	{
		accounts.GET("/active/:authenticationId", accountHandler.IsAccountActive)
		accounts.PUT("/activate/:authenticationId/:secret", accountHandler.ActivateAccount)
		accounts.PUT("/emailactivationlink/:authenticationId", accountHandler.EmailActivationLink)
		accounts.PUT("/emailactivationlink/email/:email", accountHandler.EmailActivationLinkByEmail)
		accounts.PUT("/emailmysecret/:authenticationId", accountHandler.EmailMySecret)
		accounts.PUT("/emailmysecret/email/:email", accountHandler.EmailMySecretByEmail)
		accounts.POST("/:authenticationId/:email", accountHandler.CreateAccount)
		accounts.PUT("/email/authenticationId/:email", accountHandler.SendLoginID)
		accounts.PUT("/validate/secret/:authenticationId/:secret", accountHandler.ValidateSecret)
		accounts.PUT("/password/:email/:secret", accountHandler.UpdatePassword)
		accounts.DELETE("/email/:email", accountHandler.DeleteExpiredAccount)
		accounts.DELETE("/delete", middleware.AuthMiddleware([]byte(cfg.JWTSecret)), accountHandler.DeleteMyData)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "account-service-group",
			Consumer: "account-consumer-1",
			Stream:   events.CleanupStream,
			Handler:  commandSvc.HandleCleanupEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Account service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
