// voice2ticket is the terminal console for raising help-desk tickets by
// form or by voice. It drives a single console whose session is kept in
// the local session store (or Redis) under the v2t_user key, so a restart
// resumes where the user left off.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/lorrc/voice2ticket/internal/adapters/primary/tui"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/capture"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/notify"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/s3storage"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/sessionstore"
	"github.com/lorrc/voice2ticket/internal/adapters/secondary/ticketapi"
	"github.com/lorrc/voice2ticket/internal/config"
	apperrors "github.com/lorrc/voice2ticket/internal/core/errors"
	"github.com/lorrc/voice2ticket/internal/core/ports"
	"github.com/lorrc/voice2ticket/internal/core/services"
	"github.com/lorrc/voice2ticket/internal/infrastructure/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logOutput string

	flagSet := pflag.NewFlagSet("voice2ticket", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (overrides "+config.ConfigFileEnv+")")
	flagSet.StringVar(&logOutput, "log-output", "", "write log records to this file (default: none, the screen belongs to the console)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if logOutput == "" {
		logOutput = cfg.Logging.Output
	}
	logWriter := io.Discard
	if logOutput != "" {
		output, closeOutput, err := logging.OpenOutput(logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log output %s: %w", logOutput, err)
		}
		defer closeOutput()
		logWriter = output
	}
	logConfig := logging.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.Format = cfg.Logging.Format
	logConfig.Output = logWriter
	logConfig.Environment = cfg.App.Environment
	logger := logging.NewLogger(logConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketAPI, err := ticketapi.NewClient(ticketapi.ClientConfig{
		BaseURL: cfg.TicketAPI.BaseURL,
		Timeout: cfg.TicketAPI.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return err
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
		return err
	}

	sessions, closeSessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	bridge := tui.NewBridge()
	console := services.NewConsole("", services.ConsoleDeps{
		TicketAPI: ticketAPI,
		Storage:   storage,
		Sessions:  sessions,
		Capture: capture.NewExecDevice(capture.Config{
			Command:   cfg.Capture.Command,
			Args:      cfg.Capture.Args,
			ChunkSize: cfg.Capture.ChunkSize,
			Logger:    logger,
		}),
		Notifier:  notify.Multi{notify.NewLogNotifier(logger), bridge},
		Publisher: bridge,
		Logger:    logger,
	}, services.ConsoleConfig{
		PageSize: cfg.Console.PageSize,
		Location: services.StorageLocation{
			Bucket: cfg.Storage.Bucket,
			Region: cfg.Storage.Region,
			Prefix: cfg.Storage.Prefix,
		},
	})
	defer console.Close(context.Background())

	if _, err := console.Sessions().Restore(ctx); err != nil && !errors.Is(err, apperrors.ErrNoSession) {
		logger.Warn("could not restore session", "error", err)
	}

	model := tui.NewModel(ctx, console, tui.WithLogger(logger))
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.SetProgram(program)

	_, err = program.Run()
	return err
}

// openSessionStore picks the configured session backend for the
// terminal console's single key.
func openSessionStore(ctx context.Context, cfg *config.Config) (ports.SessionStore, func() error, error) {
	if cfg.Session.Backend == "redis" {
		client, err := sessionstore.Connect(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return sessionstore.NewRedisStore(client, sessionstore.BaseKey, cfg.Session.TTL), client.Close, nil
	}
	return sessionstore.NewFileStore(cfg.Session.Dir, sessionstore.BaseKey), func() error { return nil }, nil
}
