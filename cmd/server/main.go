package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskrealm/server/catalog"
	"taskrealm/server/config"
	"taskrealm/server/events"
	"taskrealm/server/generation"
	"taskrealm/server/handlers"
	"taskrealm/server/logger"
	"taskrealm/server/metrics"
	"taskrealm/server/objectives"
	"taskrealm/server/persistence"
	"taskrealm/server/random"
	"taskrealm/server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The client app is served from other origins
		return true
	},
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize persistence", zap.Error(err))
	}
	defer store.Close()

	locks, closeLocks, err := openLocks(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize owner locks", zap.Error(err))
	}
	defer closeLocks()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.EventExchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		publisher = rabbit
		zapLogger.Info("Publishing progression events", zap.String("exchange", cfg.EventExchange))
	}
	defer publisher.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = random.NewSeed()
	}
	zapLogger.Info("Generation seed", zap.Int64("seed", seed))
	rng := random.NewLocked(random.New(seed))

	m := metrics.New()
	cat := catalog.New()
	engine := objectives.NewEngine(rng, time.Now)
	deps := services.Deps{
		Store:     store,
		Catalog:   cat,
		Engine:    engine,
		Locks:     locks,
		Publisher: publisher,
		Metrics:   m,
		Logger:    zapLogger,
	}

	objectiveService := services.NewObjectiveService(deps)
	svc := handlers.Services{
		Adventure: services.NewAdventureService(deps,
			generation.NewAreaGenerator(rng, generation.DefaultAreaConfig()), objectiveService),
		WorldPaths: services.NewWorldPathService(deps,
			generation.NewWorldPathGenerator(rng, engine, cat), objectiveService),
		Objectives: objectiveService,
	}
	clientManager := handlers.NewClientManager(zapLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zapLogger.Warn("Failed to upgrade connection", zap.Error(err))
			return
		}
		defer conn.Close()

		handlers.HandleClientConnection(conn, svc, clientManager, m, zapLogger)
	})
	mux.Handle(cfg.MetricsPath, m.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreType))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.Storage, error) {
	if cfg.StoreType == config.StorePostgres {
		logger.Info("Using PostgreSQL persistence")
		store, err := persistence.NewPostgresStore(ctx, cfg.DatabaseURL, persistence.PoolConfig{
			MaxOpenConns:    cfg.DBMaxConns,
			MaxIdleConns:    cfg.DBIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	logger.Info("Using JSON persistence", zap.String("path", cfg.JSONStorePath))
	store, err := persistence.NewJSONStore(cfg.JSONStorePath, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openLocks(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.OwnerLocker, func(), error) {
	if cfg.LockBackend != config.LockRedis {
		return services.NewLocalOwnerLocks(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	logger.Info("Using Redis owner locks", zap.String("addr", cfg.RedisAddr))
	return services.NewRedisOwnerLocks(client, cfg.LockTTL, logger), func() { client.Close() }, nil
}
