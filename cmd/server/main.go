package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	"github.com/bluecarbon/registry-api/application/usecase"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/adapter/postgres"
	"github.com/bluecarbon/registry-api/infrastructure/config"
	"github.com/bluecarbon/registry-api/infrastructure/http/handler"
	"github.com/bluecarbon/registry-api/infrastructure/http/middleware"
	"github.com/bluecarbon/registry-api/infrastructure/http/response"
	jwtservice "github.com/bluecarbon/registry-api/infrastructure/service/jwt"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
	"github.com/bluecarbon/registry-api/infrastructure/service/ratelimit"
	"github.com/bluecarbon/registry-api/infrastructure/service/solana"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "registry-api",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":     cfg.Environment,
		"cluster": cfg.SolanaCluster,
	})

	// Data store.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	// Rate limiting: Redis when configured, per-process windows otherwise.
	var rateLimitService inbound.RateLimitService
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
		redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(redisCtx).Err(); err != nil {
			redisCancel()
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		redisCancel()
		defer redisClient.Close()
		rateLimitService = ratelimit.NewRedisService(redisClient, structuredLogger)
		structuredLogger.Info(ctx, "Rate limiting backed by Redis", nil)
	} else {
		rateLimitService = ratelimit.NewMemoryService()
		structuredLogger.Info(ctx, "Rate limiting backed by in-memory windows", nil)
	}

	// Ledger.
	ledger, err := solana.NewClient(cfg.SolanaRPCURL, cfg.SolanaCluster, cfg.MintAuthorityKey, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize ledger client", err, nil)
		log.Fatalf("Failed to initialize ledger client: %v", err)
	}
	structuredLogger.Info(ctx, "Ledger client initialized", map[string]interface{}{
		"payer": ledger.PayerAddress(),
		"rpc":   cfg.SolanaRPCURL,
	})

	// Token verification.
	tokenVerifier, err := jwtservice.NewVerifier(cfg.SupabaseJWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize token verifier: %v", err)
	}

	// Repositories.
	userRepo := postgres.NewUserRepositoryAdapter(db)
	projectRepo := postgres.NewProjectRepositoryAdapter(db)
	mintRecordRepo := postgres.NewMintRecordRepositoryAdapter(db)
	auditRepo := postgres.NewAuditLogRepositoryAdapter(db)
	walletRepo := postgres.NewWalletRepositoryAdapter(db)

	// Use cases.
	reconciler := usecase.NewReconciler(projectRepo, mintRecordRepo, auditRepo, structuredLogger)
	reconciler.Start()
	defer reconciler.Stop()

	mintUseCase := usecase.NewMintUseCase(projectRepo, mintRecordRepo, auditRepo, ledger, reconciler, structuredLogger)
	walletUseCase := usecase.NewWalletUseCase(walletRepo, structuredLogger)

	// Middleware and handlers.
	includeDetails := !cfg.IsProduction()
	authMiddleware := middleware.NewAuthMiddleware(tokenVerifier, userRepo, structuredLogger, includeDetails)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger, includeDetails)

	mintHandler := handler.NewMintHandler(mintUseCase, structuredLogger, includeDetails)
	walletHandler := handler.NewWalletHandler(walletUseCase, structuredLogger, includeDetails)

	checks := map[string]handler.DependencyCheck{
		"database": func(ctx context.Context) error { return db.PingContext(ctx) },
		"ledger":   ledger.Healthy,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	healthHandler := handler.NewHealthHandler(checks)

	// Routes.
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/wallet",
		rateLimitMiddleware.General(authMiddleware.RequireAuth(http.HandlerFunc(walletHandler.Get)))).
		Methods(http.MethodGet)
	api.Handle("/wallet",
		rateLimitMiddleware.Sensitive(authMiddleware.RequireAuth(http.HandlerFunc(walletHandler.Save)))).
		Methods(http.MethodPost)
	api.Handle("/wallet",
		rateLimitMiddleware.Sensitive(authMiddleware.RequireAuth(http.HandlerFunc(walletHandler.Delete)))).
		Methods(http.MethodDelete)
	api.Handle("/mint",
		rateLimitMiddleware.Mint(authMiddleware.RequireAdmin(http.HandlerFunc(mintHandler.Mint)))).
		Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, apperror.NewNotFound("Route not found"), includeDetails)
	})

	var rootHandler http.Handler = middleware.CorrelationID(router)
	if len(cfg.CORSAllowedOrigins) > 0 {
		rootHandler = middleware.CORS(rootHandler, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
