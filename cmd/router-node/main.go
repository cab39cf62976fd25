package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cyphera/remote-accounts/internal/bridge"
	awsclient "github.com/cyphera/remote-accounts/internal/client/aws"
	"github.com/cyphera/remote-accounts/internal/config"
	"github.com/cyphera/remote-accounts/internal/db"
	"github.com/cyphera/remote-accounts/internal/genesis"
	"github.com/cyphera/remote-accounts/internal/handlers"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/metrics"
	"github.com/cyphera/remote-accounts/internal/middleware"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/server"
	"github.com/cyphera/remote-accounts/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: %v. Proceeding with environment variables/secrets.", err)
	}

	stage, err := config.Stage(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(stage)
	defer func() { _ = logger.Sync() }()
	policy := helpers.PolicyFor(stage)
	if policy.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager client", zap.Error(err))
	}
	cfg, err := config.Load(ctx, os.Getenv, secretsClient)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Info("Starting router node", zap.String("stage", cfg.Stage), zap.String("addr", cfg.Addr()))
	metrics.RegisterMetrics()

	// --- Ledger and system contracts ---
	g := genesis.Local()
	if cfg.GenesisFile != "" {
		if g, err = genesis.Load(cfg.GenesisFile); err != nil {
			logger.Fatal("Failed to load genesis", zap.String("file", cfg.GenesisFile), zap.Error(err))
		}
	}
	l := ledger.New(ledger.WithClock(time.Now), ledger.WithLogger(logger.Log.Named("ledger")))
	deployment, err := genesis.Deploy(l, g)
	if err != nil {
		logger.Fatal("Failed to deploy genesis", zap.Error(err))
	}
	logger.WithDeployment(deployment.ChainID, deployment.SourceChain, deployment.Router())
	logger.Info("Serving deployment", logger.Factory(deployment.Factory), zap.Int("routers", len(deployment.Routers)))

	// --- Result storage and sinks ---
	var store results.Store = results.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pool := connectDatabase(ctx, cfg.DatabaseURL)
		defer pool.Close()
		queries := db.New(pool)
		if err := db.Migrate(ctx, queries.GetDBTX()); err != nil {
			logger.Fatal("Failed to apply database schema", zap.Error(err))
		}
		store = results.NewPostgresStore(queries)
	} else if policy.MemoryResults {
		logger.Warn("DATABASE_URL not set, keeping results in memory")
	} else {
		logger.Fatal("A results database is required", zap.String("stage", stage))
	}
	sinks := []results.Sink{store, results.NewLogSink(logger.Log)}
	if cfg.ResultsQueueURL != "" {
		publisher, err := awsclient.NewSQSPublisherFromConfig(ctx, cfg.ResultsQueueURL)
		if err != nil {
			logger.Fatal("Failed to initialize SQS publisher", zap.Error(err))
		}
		sinks = append(sinks, results.NewQueueSink(publisher))
	}

	gateway := bridge.NewGateway(l, deployment.Gateway, bridge.WithSinks(sinks...), bridge.WithLogger(logger.Log.Named("bridge")))
	routerService := services.NewRouterService(l, deployment, gateway)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	engine := server.NewRouter(server.Services{
		Messages: routerService,
		Accounts: routerService,
		Routers:  routerService,
		Results:  services.NewResultService(store),
		Health:   handlers.NewHealthHandler(deployment.ChainID.Uint64(), deployment.SourceChain, l.Time),
	}, server.Options{
		AdminAPIKeyHash: cfg.AdminAPIKeyHash,
		CORS:            cfg.CORS,
		RateLimiter:     limiter,
	})
	if cfg.AdminAPIKeyHash == "" {
		logger.Warn("ADMIN_API_KEY_HASH not set, admin routes are disabled")
	}

	if err := server.New(cfg.Addr(), engine, cfg.ShutdownTimeout).Run(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
	logger.Info("Router node stopped")
}

func connectDatabase(ctx context.Context, dsn string) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Fatal("Unable to parse database DSN", zap.Error(err))
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}
	return pool
}
