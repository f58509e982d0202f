package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gopkg.in/natefinch/lumberjack.v2"

	cfg "github.com/sand/bot-marketplace/backend/config"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/handlers"
	"github.com/sand/bot-marketplace/backend/internal/metrics"
	"github.com/sand/bot-marketplace/backend/internal/storage"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
	"github.com/sand/bot-marketplace/backend/internal/usecases/mocked"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
	"github.com/sand/bot-marketplace/backend/internal/workers"
	"github.com/sand/bot-marketplace/backend/pkg/database"
)

// Server timeout constants.
const (
	readTimeoutSeconds     = 15
	writeTimeoutSeconds    = 15
	idleTimeoutSeconds     = 60
	shutdownTimeoutSeconds = 5
)

const adminPasswordCost = 12

func main() {
	time.Local = time.UTC

	config, err := cfg.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(config)
	logger.Warn("Starting application with configuration",
		"debug", config.App.Debug,
		"environment", config.App.Environment,
		"server_port", config.HTTP.Port,
		"storage_backend", config.Storage.Backend,
		"derivation", config.Wallet.Derivation)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStore(ctx, logger, config)
	if err != nil {
		logger.Error("Failed to open storage", "backend", config.Storage.Backend, "error", err)
		log.Fatal(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()
	store = storage.WithLatency(store, config.Storage.ReadLatency, config.Storage.WriteLatency)

	// Create repositories
	adminHash, err := usecases.HashPassword(config.Auth.AdminPassword, adminPasswordCost)
	if err != nil {
		log.Fatal(err)
	}
	usersRepository := repository.NewUsersRepository(logger, store, func() []entities.User {
		return mocked.InitialUsers(config.Auth.AdminUsername, adminHash)
	})
	botsRepository := repository.NewBotsRepository(logger, store, mocked.InitialBots)
	logsRepository := repository.NewLogsRepository(logger, store)
	statsRepository := repository.NewStatsRepository(logger, store)
	walletsRepository := repository.NewWalletsRepository(logger, store)
	transactionsRepository := repository.NewTransactionsRepository(logger, store)

	// Create usecases
	walletSecret := []byte(config.Wallet.Secret)
	if len(walletSecret) == 0 {
		walletSecret, err = walletsRepository.InstallSecret(ctx)
		if err != nil {
			logger.Error("Failed to load install secret", "error", err)
			log.Fatal(err)
		}
	}

	hub := usecases.NewLogHub()
	loggingService := usecases.NewLoggingService(logger, logsRepository, statsRepository, usersRepository, botsRepository, hub, config.Marketplace.LogCap)

	walletService, err := usecases.NewWalletService(
		logger,
		walletsRepository,
		usecases.NewSeedCipher(walletSecret, config.Wallet.LegacyPassphrase, config.Wallet.ScryptN),
		usecases.DerivationMode(config.Wallet.Derivation),
		loggingService,
	)
	if err != nil {
		logger.Error("Failed to create wallet service", "error", err)
		log.Fatal(err)
	}

	transactionService := usecases.NewTransactionService(logger, walletService, transactionsRepository, loggingService, usecases.TransactionSettings{
		SendLatency:     config.Wallet.SendLatency,
		SigningLatency:  config.Wallet.SigningLatency,
		AdminTonAddress: config.Wallet.AdminTonAddress,
	})
	marketplaceService := usecases.NewMarketplaceService(logger, botsRepository, usersRepository, transactionService, loggingService, loggingService)

	authService, err := usecases.NewAuthService(logger, usersRepository, loggingService, usecases.AuthSettings{
		JWTSecret:      jwtSecret(logger, config.Auth.JWTSecret),
		Issuer:         config.Auth.Issuer,
		BotToken:       config.Telegram.BotToken,
		AllowUnsigned:  config.Telegram.AllowUnsigned,
		InitDataMaxAge: config.Telegram.InitDataMaxAge,
		MasterIDs:      config.Telegram.MasterIDs,
	})
	if err != nil {
		logger.Error("Failed to create auth service", "error", err)
		log.Fatal(err)
	}

	m := metrics.New()

	// Initialize and run workers
	initAndRunWorkers(ctx, logger, config, transactionService, m, hub)

	// Create handlers
	httpHandler := handlers.NewHTTPHandler(logger, handlers.Services{
		Auth:         authService,
		Users:        usecases.NewUserService(logger, usersRepository, loggingService),
		Marketplace:  marketplaceService,
		Logs:         loggingService,
		Assets:       usecases.NewAssetService(logger, walletService, transactionService, config.Wallet.QRSize),
		Wallets:      walletService,
		Transactions: transactionService,
	}, m)
	wsHandler := handlers.NewWebSocketHandler(logger, authService, hub, m, handlers.NewWebSocketManager(logger))

	// Create router
	router := mux.NewRouter()
	api := router
	if config.HTTP.BasePath != "" && config.HTTP.BasePath != "/" {
		api = router.PathPrefix(config.HTTP.BasePath).Subrouter()
	}
	api.Use(httpHandler.Middleware)

	// Register WebSocket routes before HTTP routes
	wsHandler.RegisterRoutes(api)
	httpHandler.RegisterRoutes(api)

	c := cors.New(cors.Options{
		AllowedOrigins:   config.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + config.HTTP.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  readTimeoutSeconds * time.Second,
		WriteTimeout: writeTimeoutSeconds * time.Second,
		IdleTimeout:  idleTimeoutSeconds * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", server.Addr, "base_path", config.HTTP.BasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop workers and log streams before draining requests
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited properly")
}

func newLogger(config *cfg.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: config.Log.Level,
	}
	if config.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if config.Log.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   config.Log.File,
			MaxSize:    config.Log.MaxSize,
			MaxBackups: config.Log.MaxBackups,
			MaxAge:     config.Log.MaxAge,
			Compress:   config.Log.Compress,
		})
	}

	if config.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func openStore(ctx context.Context, logger *slog.Logger, config *cfg.Config) (storage.Store, error) {
	switch config.Storage.Backend {
	case storage.BackendMemory:
		return storage.NewMemoryStore(), nil
	case storage.BackendBadger:
		return storage.NewBadgerStore(logger, config.Storage.BadgerDir)
	case storage.BackendRedis:
		return storage.NewRedisStore(ctx, logger,
			config.Storage.RedisAddr,
			config.Storage.RedisPassword,
			config.Storage.RedisDB,
			config.Storage.RedisPrefix)
	case storage.BackendPostgres:
		pg, err := database.New(ctx, config.DB.DatabaseURL,
			database.MaxPoolSize(config.DB.PoolMax),
			database.ConnTimeout(config.DB.ConnectTimeout),
			database.HealthCheckPeriod(config.DB.HealthCheckPeriod),
		)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}

		logger.Info("Running database migrations")
		if err = database.RunMigrations(logger, config.DB.DatabaseURL); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		return &postgresStore{PostgresStore: storage.NewPostgresStore(logger, pg), pg: pg}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}

// postgresStore releases the pool together with the store.
type postgresStore struct {
	*storage.PostgresStore
	pg *database.Postgres
}

func (s *postgresStore) Close() error {
	err := s.PostgresStore.Close()
	s.pg.Close()
	return err
}

func jwtSecret(logger *slog.Logger, configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}

	logger.Warn("JWT secret is not configured, sessions will not survive a restart")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatal(err)
	}
	return secret
}

func initAndRunWorkers(
	ctx context.Context,
	logger *slog.Logger,
	config *cfg.Config,
	transactionService *usecases.TransactionServiceImpl,
	m *metrics.Metrics,
	hub *usecases.LogHub,
) {
	settler := workers.NewTransactionSettler(
		logger,
		transactionService,
		config.Workers.SettleAfter,
		config.Workers.SettleInterval,
	)

	go func() {
		logger.Info("Starting transaction settler worker")
		settler.Start(ctx)
	}()

	go func() {
		logger.Info("Starting log metrics watcher")
		m.WatchLogs(ctx, hub)
	}()

	logger.Info("All workers initialized and started")
}
