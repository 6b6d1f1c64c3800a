package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	httpAdapter "github.com/lorrc/voice2ticket/internal/adapters/primary/http"
	mw "github.com/lorrc/voice2ticket/internal/adapters/primary/http/middleware"
	"github.com/lorrc/voice2ticket/internal/adapters/primary/websocket"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/capture"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/notify"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/s3storage"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/sessionstore"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/ticketapi"
	"github.com/lorrc/voice2ticket/internal/auth"
	"github.com/lorrc/voice2ticket/internal/config"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/core/services"
	"github.com/lorrc/voice2ticket/internal/infrastructure/logging"
)

// hubConsole drops the console's websocket connections when it is closed.
type hubConsole struct {
	ports.Console
	hub *websocket.Hub
}

func (c hubConsole) Close(ctx context.Context) {
	c.Console.Close(ctx)
	c.hub.DisconnectConsole(c.ID())
}

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file (overrides "+config.ConfigFileEnv+")")
	pflag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	output, closeOutput, err := logging.OpenOutput(cfg.Logging.Output)
	if err != nil {
		slog.Error("failed to open log output", "error", err)
		os.Exit(1)
	}
	defer closeOutput()

	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      output,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Secondary Adapters
	ticketAPI, err := ticketapi.NewClient(ticketapi.ClientConfig{
		BaseURL: cfg.TicketAPI.BaseURL,
		Timeout: cfg.TicketAPI.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create ticket api client", "error", err)
		os.Exit(1)
	}

	storage, err := s3storage.NewConnector(ctx, s3storage.Config{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		IdentityPoolID:  cfg.Storage.IdentityPoolID,
		Endpoint:        cfg.Storage.Endpoint,
		UsePathStyle:    cfg.Storage.UsePathStyle,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to create storage connector", "error", err)
		os.Exit(1)
	}

	device := capture.NewExecDevice(capture.Config{
		Command:   cfg.Capture.Command,
		Args:      cfg.Capture.Args,
		ChunkSize: cfg.Capture.ChunkSize,
		Logger:    logger,
	})

	healthChecks := map[string]httpAdapter.HealthChecker{}
	var redisClient *redis.Client
	if cfg.Session.Backend == "redis" {
		redisClient, err = sessionstore.Connect(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		healthChecks["redis"] = httpAdapter.HealthCheckerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("redis session store connected")
	}

	sessionsFor := func(id string) ports.SessionStore {
		if redisClient != nil {
			return sessionstore.NewRedisStore(redisClient, sessionstore.ConsoleKey(id), cfg.Session.TTL)
		}
		return sessionstore.NewFileStore(cfg.Session.Dir, sessionstore.ConsoleKey(id))
	}

	// 4. Initialize Real-time Components
	tokenManager := auth.NewTokenManager(cfg.Console.TokenSecret, cfg.Console.TokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	logNotifier := notify.NewLogNotifier(logger)
	consoleCfg := services.ConsoleConfig{
		PageSize: cfg.Console.PageSize,
		Location: services.StorageLocation{
			Bucket: cfg.Storage.Bucket,
			Region: cfg.Storage.Region,
			Prefix: cfg.Storage.Prefix,
		},
	}

	// 5. Console Registry (one console per browser)
	registry := services.NewConsoleRegistry(func(id string) ports.Console {
		channel := hub.ForConsole(id)
		console := services.NewConsole(id, services.ConsoleDeps{
			TicketAPI: ticketAPI,
			Storage:   storage,
			Sessions:  sessionsFor(id),
			Capture:   device,
			Notifier:  notify.Multi{logNotifier, channel},
			Publisher: channel,
			Logger:    logger,
		}, consoleCfg)
		return hubConsole{Console: console, hub: hub}
	}, services.RegistryConfig{
		IdleTTL:         cfg.Console.IdleTTL,
		CleanupInterval: cfg.Console.CleanupInterval,
		MaxConsoles:     cfg.Console.MaxConsoles,
	}, logger)
	go registry.Run(ctx)

	// 6. Initialize Rate Limiters
	var generalRateLimiter, consoleRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		general := mw.DefaultRateLimiterConfig()
		general.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		general.BurstSize = cfg.RateLimit.BurstSize
		generalRateLimiter = mw.NewRateLimiter(ctx, general)

		creation := mw.ConsoleRateLimiterConfig()
		creation.RequestsPerSecond = cfg.RateLimit.ConsoleRPS
		creation.BurstSize = cfg.RateLimit.ConsoleBurst
		consoleRateLimiter = mw.NewRateLimiter(ctx, creation)
	}

	// 7. Setup Router
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Config:         cfg,
		Logger:         logger,
		TokenManager:   tokenManager,
		Consoles:       registry,
		Hub:            hub,
		HealthChecks:   healthChecks,
		GeneralLimiter: generalRateLimiter,
		ConsoleLimiter: consoleRateLimiter,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		logger.Error("server error", "error", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
