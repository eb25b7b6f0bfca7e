package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"referralhub/internal/config"
	handlers "referralhub/internal/handlers/api"
	"referralhub/internal/middleware"
	"referralhub/internal/repositories/mongodb"
	"referralhub/internal/services"
	"referralhub/pkg/cache"
	"referralhub/pkg/database"
	"referralhub/pkg/fraud"
	"referralhub/pkg/logger"
	"referralhub/pkg/sms"
	"referralhub/pkg/storage"
	"referralhub/pkg/websocket"
	"referralhub/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	mongoDB, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer mongoDB.Close()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongoDB.Database, appLogger).Up(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	dependencies := map[string]handlers.Pinger{"mongodb": mongoDB}

	// Live feed and cache
	hub := websocket.NewHub(appLogger.WithField("component", "hub"))
	go hub.Run(ctx)

	var linkCache cache.Cache = cache.NoopCache{}
	var publisher websocket.Publisher = hub
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()

		relay := websocket.NewRedisRelay(redisCache, hub, appLogger.WithField("component", "relay"))
		go relay.Run(ctx)

		linkCache = redisCache
		publisher = relay
		dependencies["redis"] = redisCache
	}
	if !cfg.WebSocket.Enabled {
		publisher = websocket.NopPublisher{}
	}

	// External providers
	smsProvider, err := sms.NewProvider(ctx, sms.ProviderConfig{
		Provider:         cfg.SMS.Provider,
		TwilioAccountSID: cfg.SMS.Twilio.AccountSID,
		TwilioAuthToken:  cfg.SMS.Twilio.AuthToken,
		TwilioFromNumber: cfg.SMS.Twilio.FromNumber,
		AWSRegion:        cfg.SMS.AWS.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create SMS provider")
	}

	fileStorage, err := storage.NewProvider(ctx, storage.ProviderConfig{
		Provider:           cfg.Storage.Provider,
		LocalBasePath:      cfg.Storage.Local.BasePath,
		LocalBaseURL:       cfg.Storage.Local.BaseURL,
		AWSRegion:          cfg.Storage.AWS.Region,
		AWSBucket:          cfg.Storage.AWS.Bucket,
		AWSCDNDomain:       cfg.Storage.AWS.CDNDomain,
		GCPProjectID:       cfg.Storage.GCP.ProjectID,
		GCPBucket:          cfg.Storage.GCP.Bucket,
		GCPCredentialsFile: cfg.Storage.GCP.CredentialsFile,
		GCPCDNDomain:       cfg.Storage.GCP.CDNDomain,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create storage provider")
	}

	detector, err := fraud.NewDetector(fraud.Thresholds{
		MaxClicksPerHour: cfg.Fraud.MaxClicksPerHour,
		MaxClicksPerIP:   cfg.Fraud.MaxClicksPerIP,
		Window:           cfg.Fraud.Window,
	}, cfg.Fraud.ReviewThreshold)
	if err != nil {
		appLogger.WithError(err).Fatal("Invalid fraud thresholds")
	}

	// Repositories
	db := mongoDB.Database
	campaignRepo := mongodb.NewCampaignRepository(db)
	participantRepo := mongodb.NewParticipantRepository(db)
	linkRepo := mongodb.NewReferralLinkRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	conversionRepo := mongodb.NewConversionRepository(db)
	rewardRepo := mongodb.NewRewardRepository(db)
	signalRepo := mongodb.NewFraudSignalRepository(db)
	exportRepo := mongodb.NewExportRepository(db)

	// Services
	linkService := services.NewLinkService(cfg, linkCache, linkRepo, campaignRepo, signalRepo, appLogger)
	clickService := services.NewClickService(cfg, eventRepo, linkRepo, publisher, appLogger)
	eventService := services.NewEventService(eventRepo, campaignRepo, linkRepo, participantRepo, appLogger)
	conversionService := services.NewConversionService(cfg, conversionRepo, campaignRepo, linkRepo, participantRepo, eventRepo, publisher, appLogger)
	rewardService := services.NewRewardService(cfg, rewardRepo, conversionRepo, campaignRepo, publisher, appLogger)
	fraudService := services.NewFraudService(detector, linkRepo, eventRepo, signalRepo, publisher, appLogger)
	campaignService := services.NewCampaignService(cfg, campaignRepo, linkService, appLogger)
	participantService := services.NewParticipantService(cfg, participantRepo, campaignRepo, linkRepo, smsProvider, appLogger)
	exportService := services.NewExportService(cfg, conversionRepo, exportRepo, fileStorage, appLogger)

	// Handlers
	h := &routes.Handlers{
		Redirect:    handlers.NewRedirectHandler(cfg.Attribution, linkService, clickService, appLogger),
		Event:       handlers.NewEventHandler(eventService, appLogger),
		Conversion:  handlers.NewConversionHandler(conversionService, cfg.Attribution.CookieName, appLogger),
		Reward:      handlers.NewRewardHandler(rewardService, appLogger),
		Campaign:    handlers.NewCampaignHandler(campaignService, appLogger),
		Participant: handlers.NewParticipantHandler(participantService, appLogger),
		Link:        handlers.NewLinkHandler(linkService, appLogger),
		Fraud:       handlers.NewFraudHandler(fraudService, appLogger),
		Export:      handlers.NewExportHandler(exportService, appLogger),
		Health:      handlers.NewHealthHandler(cfg.App.Version, dependencies, appLogger),
	}
	if cfg.WebSocket.Enabled {
		h.Health.WithLiveFeed(hub)
		h.Live = websocket.NewHandler(hub, websocket.HandlerConfig{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			PingInterval:    cfg.WebSocket.PingInterval,
			PongTimeout:     cfg.WebSocket.PongTimeout,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		}, appLogger.WithField("component", "live"))
	}

	// Initialize Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	routes.SetupPublicRoutes(router, h)
	api := router.Group("/api")
	{
		routes.SetupReferralRoutes(api, h, routes.AuthConfig{
			Secret: cfg.Security.JWTSecret,
			Issuer: cfg.Security.JWTIssuer,
		})
	}

	// Start server
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}
	// Clicks already accepted by the redirect are allowed to finish.
	clickService.Wait()
}
