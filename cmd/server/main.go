package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"paylink.backend/internal/config"
	"paylink.backend/internal/infrastructure/blockchain"
	"paylink.backend/internal/infrastructure/jobs"
	"paylink.backend/internal/infrastructure/models"
	"paylink.backend/internal/infrastructure/repositories"
	"paylink.backend/internal/infrastructure/settlement"
	"paylink.backend/internal/infrastructure/wallet"
	"paylink.backend/internal/interfaces/http/handlers"
	"paylink.backend/internal/interfaces/http/middleware"
	"paylink.backend/internal/usecases"
	"paylink.backend/pkg/jwt"
	"paylink.backend/pkg/logger"
	"paylink.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("connected to PostgreSQL, schema up to date")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	identityRepo := repositories.NewIdentityRepository(db)
	preferenceRepo := repositories.NewPreferenceRepository(db)
	networkRepo := repositories.NewNetworkRepository(db)
	requestRepo := repositories.NewPaymentRequestRepository(db)

	// The registry is an immutable snapshot of network and asset reference
	// data; changing it means restarting the service.
	registry, err := usecases.NewRegistry(context.Background(), networkRepo)
	if err != nil {
		return fmt.Errorf("failed to load network registry: %w", err)
	}

	// Chain and settlement infrastructure
	clientFactory := blockchain.NewClientFactory()
	providerClient := settlement.NewProviderClient(cfg.Settlement.ProviderURL, cfg.Settlement.QuoteTimeout)
	walletBridge := wallet.NewLocalWalletBridge(networkRepo, clientFactory, cfg.Wallet.OperatorPrivateKey)
	receiptObserver := blockchain.NewReceiptObserver(networkRepo, clientFactory)

	// Usecases
	allowanceChecker := usecases.NewAllowanceChecker(registry, clientFactory)
	quoteResolver := usecases.NewQuoteResolver(registry, providerClient)
	planBuilder := usecases.NewPlanBuilder(registry, allowanceChecker)
	identityUsecase := usecases.NewIdentityUsecase(identityRepo, registry, jwtService)
	preferenceUsecase := usecases.NewPreferenceUsecase(preferenceRepo, registry)
	requestUsecase := usecases.NewPaymentRequestUsecase(requestRepo, identityRepo, registry)
	orchestrator := usecases.NewPaymentOrchestrator(
		registry,
		quoteResolver,
		planBuilder,
		allowanceChecker,
		providerClient,
		walletBridge,
		receiptObserver,
		identityRepo,
		preferenceRepo,
		requestRepo,
	)

	// Handlers
	identityHandler := handlers.NewIdentityHandler(identityUsecase)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceUsecase)
	requestHandler := handlers.NewPaymentRequestHandler(requestUsecase)
	paymentHandler := handlers.NewPaymentHandler(orchestrator, walletBridge)
	networkHandler := handlers.NewNetworkHandler(registry)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiryJob := jobs.NewPaymentRequestExpiryJob(requestRepo, cfg.Jobs.RequestExpiryInterval)
	go expiryJob.Start(ctx)

	// Router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		identityHandler:   identityHandler,
		preferenceHandler: preferenceHandler,
		requestHandler:    requestHandler,
		paymentHandler:    paymentHandler,
		networkHandler:    networkHandler,
		authMiddleware:    authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down server...")
		expiryJob.Stop()
		cancel()
	}()

	log.Printf("PayLink backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
