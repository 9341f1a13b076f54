package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/groupmeet/internal/config"
	"github.com/rpggio/groupmeet/internal/domain/activity"
	"github.com/rpggio/groupmeet/internal/domain/calendar"
	"github.com/rpggio/groupmeet/internal/mcp"
	"github.com/rpggio/groupmeet/internal/metrics"
	"github.com/rpggio/groupmeet/internal/sqlite"
	"github.com/rpggio/groupmeet/internal/transport"
)

func newServeCmd() *cobra.Command {
	var transportMode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP or stdio server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if transportMode != "" {
				cfg.Transport.Mode = transportMode
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("config error: %w", err)
				}
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&transportMode, "transport", "", "Transport mode: http or stdio (overrides GROUPMEET_TRANSPORT_MODE)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger, closeLog := newLogger(cfg)
	defer closeLog()

	db, err := openDB(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()

	g, err := cfg.BuildGrid()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	var calendarMetrics calendar.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New()
		calendarMetrics = recorder
	}

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	calendarSvc := calendar.NewService(
		sqlite.NewWidgetDataRepository(db),
		activitySvc,
		calendarMetrics,
		calendar.Config{Grid: g, Policy: policy},
		logger,
	)
	registry := calendar.NewRegistry(calendarSvc, calendar.DefaultIdleTimeout)
	handler := mcp.NewHandler(registry, calendarSvc, activitySvc)
	apiKeys := sqlite.NewAPIKeyRepository(db)

	mcpServer := mcp.NewServer(mcp.Config{
		Handler:       handler,
		Resolver:      apiKeys,
		AuthEnabled:   cfg.Auth.Enabled,
		DefaultUser:   cfg.Auth.DefaultUser,
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	logger.Info("calendar grid", "slots_per_day", g.SlotsPerDay, "legacy_policy", policy)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, registry, time.Minute)

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}

	identity := transport.StaticUserMiddleware(cfg.Auth.DefaultUser)
	if cfg.Auth.Enabled {
		identity = transport.AuthMiddleware(apiKeys)
	}
	opts := transport.Options{
		Identity: identity,
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: calendar.DefaultIdleTimeout},
		),
		Logger: logger,
	}
	if recorder != nil {
		opts.Metrics = recorder.Handler()
	}
	router := transport.NewServer(handler, opts)
	return runHTTPMode(ctx, logger, router, cfg.Server.Host, cfg.Server.Port)
}

// sweepSessions evicts idle calendar sessions until ctx is done.
func sweepSessions(ctx context.Context, registry *calendar.Registry, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Sweep(ctx)
		}
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or context is canceled
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}

func newLogger(cfg config.Config) (*slog.Logger, func()) {
	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	closeLog := func() {}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			closeLog = func() { _ = file.Close() }
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return logger, closeLog
}

func openDB(path string) (*sqlite.DB, error) {
	if err := ensureDBDir(path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
