package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/lorrc/voice2ticket/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/lorrc/voice2ticket/internal/adapters/primary/websocket"
	"github.com/lorrc/voice2ticket/internal/auth"
	"github.com/lorrc/voice2ticket/internal/config"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// ConsoleRegistry is what the router needs from the console registry
type ConsoleRegistry interface {
	ConsoleManager
	mw.ConsoleLookup
	ConsoleCounter
}

// RouterDeps holds everything the HTTP surface is built from. The rate
// limiters are optional.
type RouterDeps struct {
	Config         *config.Config
	Logger         *slog.Logger
	TokenManager   *auth.TokenManager
	Consoles       ConsoleRegistry
	Hub            *wsAdapter.Hub
	HealthChecks   map[string]HealthChecker
	GeneralLimiter *mw.RateLimiter
	ConsoleLimiter *mw.RateLimiter
}

// NewRouter builds the console server routes
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	errorHandler := NewErrorHandler(logger)

	// The hub routes every state change to the console's connections
	var events ports.EventPublisher
	if deps.Hub != nil {
		events = deps.Hub
	}

	consoleHandler := NewConsoleHandler(deps.Consoles, deps.TokenManager, events, errorHandler, logger)
	sessionHandler := NewSessionHandler(events, errorHandler, logger)
	ticketHandler := NewTicketHandler(events, errorHandler, logger)
	recordingHandler := NewRecordingHandler(events, errorHandler, logger)
	audioHandler := NewAudioHandler(events, errorHandler, logger)
	healthHandler := NewHealthHandler(deps.HealthChecks, deps.Consoles, deps.Config.App.Version)

	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	if len(deps.Config.Server.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.Server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if deps.GeneralLimiter != nil {
		r.Use(deps.GeneralLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	healthHandler.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		// Console creation with stricter rate limiting
		r.Group(func(r chi.Router) {
			if deps.ConsoleLimiter != nil {
				r.Use(deps.ConsoleLimiter.Middleware)
			}
			r.Route("/consoles", consoleHandler.RegisterPublicRoutes)
		})

		// Console-bound routes
		r.Group(func(r chi.Router) {
			r.Use(mw.ConsoleAuth(deps.TokenManager, deps.Consoles))

			consoleHandler.RegisterRoutes(r)
			r.Route("/auth", sessionHandler.RegisterRoutes)
			r.Route("/tickets", ticketHandler.RegisterRoutes)
			r.Route("/recording", recordingHandler.RegisterRoutes)
			r.Route("/audio", audioHandler.RegisterRoutes)

			if deps.Hub != nil {
				r.Get("/ws", NewWebSocketHandler(deps.Hub, deps.Config, logger).ServeHTTP)
			}
		})
	})

	return r
}
