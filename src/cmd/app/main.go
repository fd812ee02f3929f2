package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"member-service/src/internal/config"
	"member-service/src/internal/delivery/http/middleware"
	deliveryMessaging "member-service/src/internal/delivery/messaging"
	"member-service/src/internal/repository"
	"member-service/src/pkg/log"

	"github.com/hibiken/asynq"
)

func main() {
	viperConfig := config.NewViper()
	viperConfig.SetDefault("log.level", "DEBUG")
	viperConfig.SetDefault("app.name", "MEMBER_SERVICE")
	viperConfig.SetDefault("web.port", 8080)
	log.InitLogger(viperConfig)
	config.NewKafkaConfig(viperConfig)
	logger := log.GetLogger()
	config.LoadRedisConfig(viperConfig)
	db := config.NewDatabase(viperConfig, logger)
	redisClient := config.NewRedis()
	producer := config.NewKafkaProducer(viperConfig, logger)
	validate := config.NewValidator(viperConfig)
	geoservice, err := config.NewGeoService(viperConfig)
	if err != nil {
		logger.Error("main", fmt.Sprintf("Failed to init geoservice: %v", err), "main", "")
		geoservice = &config.GeoService{}
	}
	asynqClient := config.NewAsynqClient(viperConfig)
	asynqServer := config.NewAsynqServer(viperConfig)
	asynqMux := asynq.NewServeMux()

	app := config.NewFiber(viperConfig)
	app.Use(middleware.NewLogger())
	walletUseCase := config.Bootstrap(&config.BootstrapConfig{
		DB:          db,
		App:         app,
		Log:         logger,
		Validate:    validate,
		Config:      viperConfig,
		Producer:    producer,
		Redis:       redisClient,
		Geoservice:  geoservice,
		AsynqClient: asynqClient,
		Async:       asynqMux,
	})

	go func() {
		if err := asynqServer.Run(asynqMux); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start asynq server: %v", err), "main", "")
		}
	}()

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	if viperConfig.GetBool("kafka.consumer.enabled") {
		memberRepository := repository.NewMemberRepository(db)
		commissionConsumer := deliveryMessaging.NewCommissionConsumer(logger, viperConfig, memberRepository, walletUseCase)
		go func() {
			if err := deliveryMessaging.Run(consumerCtx, viperConfig, logger, commissionConsumer); err != nil && consumerCtx.Err() == nil {
				logger.Error("main", fmt.Sprintf("Commission consumer stopped: %v", err), "main", "")
			}
		}()
	}

	go func() {
		webPort := viperConfig.GetInt("web.port")
		if err := app.Listen(fmt.Sprintf(":%d", webPort)); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("main", "Server member-service is shutting down...", "gracefull", "")

	cancelConsumer()
	asynqServer.Shutdown()
	asynqClient.Close()

	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Shutdown(); err != nil {
		logger.Error("main", fmt.Sprintf("Error during shutdown: %v", err), "graceful", "")
	}

	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "gracefull", "")
}
