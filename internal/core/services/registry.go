package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
)

// ConsoleFactory builds the console for a freshly issued ID
type ConsoleFactory func(id string) ports.Console

// RegistryConfig holds console registry configuration
type RegistryConfig struct {
	IdleTTL         time.Duration // How long an unused console is kept
	CleanupInterval time.Duration // How often idle consoles are evicted
	MaxConsoles     int           // Zero means unlimited
}

// DefaultRegistryConfig returns a sensible default configuration
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		IdleTTL:         30 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

type consoleEntry struct {
	console  ports.Console
	lastSeen time.Time
}

// ConsoleRegistry keeps the consoles served over HTTP, one per browser
type ConsoleRegistry struct {
	consoles map[string]*consoleEntry
	mu       sync.RWMutex
	factory  ConsoleFactory
	cfg      RegistryConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewConsoleRegistry creates an empty registry
func NewConsoleRegistry(factory ConsoleFactory, cfg RegistryConfig, logger *slog.Logger) *ConsoleRegistry {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRegistryConfig().IdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRegistryConfig().CleanupInterval
	}
	return &ConsoleRegistry{
		consoles: make(map[string]*consoleEntry),
		factory:  factory,
		cfg:      cfg,
		logger:   logger.With("component", "console_registry"),
		now:      time.Now,
	}
}

// Create issues a new console
func (r *ConsoleRegistry) Create(ctx context.Context) (ports.Console, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.MaxConsoles > 0 && len(r.consoles) >= r.cfg.MaxConsoles {
		return nil, apperrors.ErrRateLimited
	}

	id := uuid.NewString()
	console := r.factory(id)
	r.consoles[id] = &consoleEntry{console: console, lastSeen: r.now()}

	r.logger.InfoContext(ctx, "console created", "console_id", id, "total_consoles", len(r.consoles))
	return console, nil
}

// Get returns a live console and marks it as used
func (r *ConsoleRegistry) Get(id string) (ports.Console, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.consoles[id]
	if !ok {
		return nil, apperrors.ErrConsoleNotFound
	}
	entry.lastSeen = r.now()
	return entry.console, nil
}

// Acquire returns the console for id, recreating it when it was evicted or
// the process restarted. A recreated console restores its stored session.
func (r *ConsoleRegistry) Acquire(ctx context.Context, id string) (ports.Console, error) {
	r.mu.Lock()
	if entry, ok := r.consoles[id]; ok {
		entry.lastSeen = r.now()
		r.mu.Unlock()
		return entry.console, nil
	}
	if r.cfg.MaxConsoles > 0 && len(r.consoles) >= r.cfg.MaxConsoles {
		r.mu.Unlock()
		return nil, apperrors.ErrRateLimited
	}
	console := r.factory(id)
	r.consoles[id] = &consoleEntry{console: console, lastSeen: r.now()}
	r.mu.Unlock()

	if _, err := console.Sessions().Restore(ctx); err == nil {
		r.logger.InfoContext(ctx, "console resumed with stored session", "console_id", id)
	}
	return console, nil
}

// Remove closes and forgets a console
func (r *ConsoleRegistry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	entry, ok := r.consoles[id]
	delete(r.consoles, id)
	r.mu.Unlock()

	if ok {
		entry.console.Close(ctx)
	}
}

// Len returns the number of live consoles
func (r *ConsoleRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.consoles)
}

// Run evicts idle consoles until ctx is done, then closes the rest
func (r *ConsoleRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			r.evictIdle(ctx)
		}
	}
}

func (r *ConsoleRegistry) evictIdle(ctx context.Context) int {
	r.mu.Lock()
	var idle []*consoleEntry
	for id, entry := range r.consoles {
		if r.now().Sub(entry.lastSeen) > r.cfg.IdleTTL {
			idle = append(idle, entry)
			delete(r.consoles, id)
		}
	}
	r.mu.Unlock()

	for _, entry := range idle {
		entry.console.Close(ctx)
		r.logger.InfoContext(ctx, "console evicted", "console_id", entry.console.ID())
	}
	return len(idle)
}

func (r *ConsoleRegistry) closeAll(ctx context.Context) {
	r.mu.Lock()
	entries := r.consoles
	r.consoles = make(map[string]*consoleEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.console.Close(ctx)
	}
}
