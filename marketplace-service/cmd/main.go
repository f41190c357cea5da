package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homehero/marketplace-service/internal/app/marketplace/config"
	"homehero/marketplace-service/internal/app/marketplace/handler"
	"homehero/marketplace-service/internal/app/marketplace/identity"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure/cache"
	"homehero/marketplace-service/internal/app/marketplace/infrastructure/messaging"
	"homehero/marketplace-service/internal/app/marketplace/processor"
	"homehero/marketplace-service/internal/app/marketplace/repository"
	"homehero/marketplace-service/internal/app/marketplace/service"
	"homehero/marketplace-service/internal/app/marketplace/validation"
	"homehero/pkg/logger"
)

const serviceName = "marketplace-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.App.LogLevel, cfg.App.Env)

	if cfg.App.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.App.LogstashAddr, serviceName, cfg.App.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.App.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	if err := ensureIndexes(userRepo, serviceRepo, bookingRepo); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create indexes")
	}

	// Redis необязателен: без него сертификаты кешируются только в памяти процесса
	var certStore identity.CertificateStore
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Str("address", cfg.Redis.Address()).Msg("Redis unavailable, certificates cached in memory only")
		} else {
			defer redisClient.Close()
			certStore = redisClient
			logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
		}
	}

	var kafkaProducer infrastructure.MessagePublisher = messaging.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaProducer = messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Initialized Kafka producer")
	}
	defer kafkaProducer.Close()

	keyProvider := identity.NewRemoteKeyProvider(cfg.Identity.CertsURL, nil, certStore)
	verifier := identity.NewVerifier(cfg.Identity.ProjectID, keyProvider)

	ownerOnly := cfg.App.MutationPolicy == config.PolicyOwner
	authService := service.NewAuthService(verifier)
	userService := service.NewUserService(userRepo, kafkaProducer)
	catalogService := service.NewCatalogService(serviceRepo, userRepo, kafkaProducer, ownerOnly)
	bookingService := service.NewBookingService(bookingRepo, userRepo, kafkaProducer, ownerOnly)
	statsService := service.NewStatsService(userRepo, serviceRepo, bookingRepo, repository.NewDatabasePinger(db))
	logger.Info().Str("mutation_policy", cfg.App.MutationPolicy).Msg("Services initialized")

	appCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()

	scheduler := processor.NewCronScheduler(keyProvider, statsService)
	if err := scheduler.Start(appCtx, cfg.Identity.KeysSchedule, cfg.App.StatsSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer scheduler.Stop()

	validator := validation.New()
	responder := handler.NewResponder(cfg.App.IsProduction())
	router := handler.SetupRoutes(handler.Handlers{
		User:    handler.NewUserHandler(userService, validator, responder),
		Catalog: handler.NewCatalogHandler(catalogService, validator, responder),
		Booking: handler.NewBookingHandler(bookingService, validator, responder),
		System:  handler.NewSystemHandler(statsService, responder),
	}, handler.NewAuthMiddleware(authService, userService, responder), responder, cfg.App.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("env", cfg.App.Env).
			Msg("Starting Home Hero Server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Home Hero Server...")
	stopJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	logger.Info().Msg("Home Hero Server stopped gracefully")
}

// connectMongoDB подключается с Stable API v1 (strict); до 10 попыток, пока база поднимается
func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB options: %w", err)
	}

	for i := 0; i < 10; i++ {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(pingCtx, nil)
		cancel()
		if err == nil {
			return client, nil
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	_ = client.Disconnect(context.Background())
	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func ensureIndexes(repos ...interface{ EnsureIndexes(ctx context.Context) error }) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, repo := range repos {
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}
