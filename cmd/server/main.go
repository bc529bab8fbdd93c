// RestWell - sleep and caffeine wellness companion server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/restwell/internal/agent"
	"github.com/ashureev/restwell/internal/api"
	"github.com/ashureev/restwell/internal/baseline"
	"github.com/ashureev/restwell/internal/config"
	"github.com/ashureev/restwell/internal/gemini"
	"github.com/ashureev/restwell/internal/grpchealth"
	"github.com/ashureev/restwell/internal/identity"
	"github.com/ashureev/restwell/internal/logging"
	"github.com/ashureev/restwell/internal/middleware"
	"github.com/ashureev/restwell/internal/retention"
	"github.com/ashureev/restwell/internal/store"
	"github.com/ashureev/restwell/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if _, err := logging.Setup(os.Stdout, cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "model", cfg.Gemini.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit store (optional).
	var repo store.Repository
	var audit agent.AuditLogger
	if cfg.Audit.Enabled {
		sqlite, err := store.NewSQLite(cfg.Audit.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := sqlite.Close(); closeErr != nil {
				slog.Error("Failed to close repository", "error", closeErr)
			}
		}()

		if err := sqlite.Ping(ctx); err != nil {
			slog.Error("Database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database connected", "path", cfg.Audit.DBPath)

		repo = sqlite
		audit = agent.NewStoreAuditLogger(sqlite, cfg.Audit.QueueSize)
		retention.NewWorker(sqlite, cfg.Audit.Retention, 0).Start(ctx)
	} else {
		slog.Info("Chat audit disabled")
	}

	// Rate limiters.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				slog.Warn("Failed to close redis client", "error", closeErr)
			}
		}()
		slog.Info("Using redis rate limiter", "addr", cfg.Redis.Addr)
	}
	chatLimiter, closeChat := newLimiter(redisClient, "restwell:rl:chat:", cfg.RateLimit.ChatRequests, cfg.RateLimit.Window)
	defer closeChat()
	assessLimiter, closeAssess := newLimiter(redisClient, "restwell:rl:assess:", cfg.RateLimit.AssessRequests, cfg.RateLimit.Window)
	defer closeAssess()

	// Chat proxy.
	geminiClient := gemini.NewClient(gemini.ClientConfig{
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	})
	chatCfg := agent.DefaultConfig()
	chatCfg.Temperature = cfg.Chat.Temperature
	chatCfg.MaxOutputTokens = cfg.Chat.MaxOutputTokens
	chatCfg.MaxRequestBodySize = cfg.Chat.MaxRequestBodySize
	chatCfg.UpstreamTimeout = cfg.Gemini.Timeout
	chatCfg.Guardrails = agent.Guardrails{
		MaxMessages:     cfg.Chat.HistoryLimit,
		MaxMessageChars: cfg.Chat.MessageCharLimit,
		DropEmpty:       cfg.Chat.DropEmpty,
	}
	svc := agent.NewService(geminiClient, agent.EnvKey(cfg.Gemini.APIKeyEnv), chatCfg)
	if !svc.CredentialConfigured() {
		slog.Warn("Upstream credential not set; chat requests will fail until it is", "env", cfg.Gemini.APIKeyEnv)
	}
	chatHandler := agent.NewHandler(svc, chatLimiter, audit, agent.OriginPatterns(cfg.AllowedOrigins))
	defer chatHandler.Close()

	// Assessment and meta handlers.
	assessHandler := api.NewAssessHandler(baseline.NewAssessor(nil))
	healthHandler := api.NewHealthHandler(repo, svc.CredentialConfigured, geminiClient.Model())

	// gRPC health (optional).
	if cfg.GRPCHealthAddr != "" {
		if err := grpchealth.NewServer(svc.CredentialConfigured, 0).Start(ctx, cfg.GRPCHealthAddr); err != nil {
			slog.Error("Failed to start gRPC health server", "error", err)
			os.Exit(1)
		}
	}

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)
	healthHandler.RegisterRoutes(r)
	chatHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(assessLimiter, identity.RateLimitKey))
		assessHandler.RegisterRoutes(r)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Upstream calls may take up to the configured timeout, so the write
	// deadline has to outlast it.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// newLimiter picks the limiter backend. Zero requests disables limiting.
func newLimiter(client *redis.Client, prefix string, requests int, window time.Duration) (middleware.Limiter, func()) {
	if requests <= 0 {
		return middleware.AllowAll{}, func() {}
	}
	if client != nil {
		return middleware.NewRedisLimiter(client, prefix, requests, window), func() {}
	}
	l := middleware.NewMemoryLimiter(requests, window)
	return l, l.Close
}
