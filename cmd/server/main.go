package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/iho/cambiod/internal/adapter/http"
	"github.com/iho/cambiod/internal/adapter/http/handler"
	"github.com/iho/cambiod/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cambiod/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cambiod/internal/adapter/repository/redis"
	"github.com/iho/cambiod/internal/infrastructure/auth"
	"github.com/iho/cambiod/internal/infrastructure/config"
	"github.com/iho/cambiod/internal/infrastructure/logging"
	"github.com/iho/cambiod/internal/infrastructure/metrics"
	"github.com/iho/cambiod/internal/infrastructure/postgres"
	"github.com/iho/cambiod/internal/infrastructure/rates"
	"github.com/iho/cambiod/internal/infrastructure/redis"
	"github.com/iho/cambiod/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	buyCommission, err := decimal.NewFromString(cfg.CommissionBuy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid COMMISSION_BUY")
	}
	sellCommission, err := decimal.NewFromString(cfg.CommissionSell)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid COMMISSION_SELL")
	}

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	ratesCache := redisRepo.NewRatesCache(redisClient)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	rateUC := usecase.NewRateUseCase(rateRepo, ratesCache, idGen, cfg.RatesCacheTTL)
	accountUC := usecase.NewAccountUseCase(accountRepo, clientRepo, idGen)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	txnUC := usecase.NewTransactionUseCase(txnRepo)
	receipts := usecase.NewReceiptGenerator(txnRepo)
	exchangeUC := usecase.NewExchangeUseCase(
		txManager,
		accountRepo,
		txnRepo,
		rateUC,
		accountUC,
		receipts,
		idGen,
		retrier,
		usecase.ExchangeConfig{
			BuyCommission:  buyCommission,
			SellCommission: sellCommission,
		},
	)

	// Authentication is optional; without a secret the API runs open.
	var jwtManager *auth.JWTManager
	var tokens handler.TokenIssuer
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		tokens = jwtManager
	} else if cfg.AuthEnabled {
		log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET to be set")
	}

	appMetrics := metrics.New()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userUC, accountUC, tokens)
	accountHandler := handler.NewAccountHandler(accountUC)
	exchangeHandler := handler.NewExchangeHandler(exchangeUC, appMetrics)
	rateHandler := handler.NewRateHandler(rateUC)
	transactionHandler := handler.NewTransactionHandler(txnUC, accountUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:        authHandler,
		AccountHandler:     accountHandler,
		ExchangeHandler:    exchangeHandler,
		RateHandler:        rateHandler,
		TransactionHandler: transactionHandler,
		HealthHandler:      healthHandler,
		JWTManager:         jwtManager,
		AuthEnabled:        cfg.AuthEnabled,
		Metrics:            appMetrics,
		RateLimiter:        middleware.NewRateLimiter(cfg.HTTPRateLimit, cfg.HTTPRateBurst),
	})

	// Background rate refresh
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if cfg.RatesRefreshEnabled {
		workerLogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
		worker := rates.NewWorker(rates.Config{
			Fetcher:   rates.NewSimulatedFetcher(rateUC, 50),
			Publisher: rateUC,
			Logger:    workerLogger.Logger,
			Interval:  cfg.RatesRefreshInterval,
		})
		go func() {
			if err := worker.Start(workerCtx); err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("rate refresh worker stopped")
			}
		}()
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
