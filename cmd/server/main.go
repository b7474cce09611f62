package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naijaprep/cbt-service/internal/config"
	"github.com/naijaprep/cbt-service/internal/events"
	"github.com/naijaprep/cbt-service/internal/handlers"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories/postgres"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/store"
	"github.com/naijaprep/cbt-service/internal/utils"
	"github.com/naijaprep/cbt-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	logger.Info("Starting CBT service", "environment", cfg.Environment, "port", cfg.Port)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Question{}, &models.CBTResult{}, &models.User{}); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	repo := postgres.NewRepository(db)
	sessionStore := store.NewRedisSessionStore(redisClient)
	validator := utils.NewValidator()

	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.ResultTopic,
		Logger:       utils.ToSlogLogger(logger),
	})
	if err != nil {
		// The service can score and store results without the event stream;
		// downstream consumers just go dark.
		logger.Error("Failed to create Kafka publisher, events disabled", "error", err)
	} else {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	sessions := services.NewSessionService(repo, sessionStore, publisher, logger, validator)
	defer sessions.Close()
	importer := services.NewQuestionImportService(repo.Question(), logger, validator)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(sessions, importer, validator, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
