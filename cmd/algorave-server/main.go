package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Its-donkey/algorave-share/internal/api"
	"github.com/Its-donkey/algorave-share/internal/config"
	"github.com/Its-donkey/algorave-share/internal/metadata"
	"github.com/Its-donkey/algorave-share/internal/metrics"
	"github.com/Its-donkey/algorave-share/internal/store"
	"github.com/Its-donkey/algorave-share/internal/web"
	"github.com/Its-donkey/algorave-share/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "algorave-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger := logging.New("algorave-server", logging.ParseLevel(cfg.LogLevel), stdout)
	if cfg.LogDir != "" {
		fw, err := logging.OpenRotatingFile(cfg.LogDir, "algorave-server.log", cfg.LogMaxSizeMB, cfg.LogMaxFiles)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer fw.Close()
		logger.AddWriter(fw)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store", "open store", err, nil)
		return err
	}
	defer closeStore()
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("store", "ensure schema", err, nil)
		return fmt.Errorf("ensure schema: %w", err)
	}

	handler, err := newHandler(cfg, st, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return context.Background()
		},
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server", "server started", map[string]any{
			"addr":     cfg.ListenAddr,
			"postgres": cfg.UsesPostgres(),
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server", "server failed", err, nil)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server", "shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server", "shutdown error", err, nil)
		return err
	}
	return nil
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(args []string) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}

	fs := flag.NewFlagSet("algorave-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	listen := fs.String("listen", cfg.ListenAddr, "address to listen on")
	databaseURL := fs.String("database-url", cfg.DatabaseURL, "postgres connection string; empty uses the in-memory store")
	templatesDir := fs.String("templates", cfg.TemplatesDir, "directory overriding the embedded form templates")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, fmt.Errorf("parse flags: %w", err)
	}
	cfg.ListenAddr = *listen
	cfg.DatabaseURL = *databaseURL
	cfg.TemplatesDir = *templatesDir

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if !cfg.UsesPostgres() {
		return store.NewMemoryStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return store.NewPostgresStore(pool), pool.Close, nil
}

// newHandler wires the API, the form pages and the metrics endpoint behind
// the request logging middleware.
func newHandler(cfg config.Config, st store.Store, logger *logging.Logger) (http.Handler, error) {
	recorder := metrics.New()
	sink := store.NewSink(st, 0)

	previews := metadata.NewService(nil, logger, cfg.YouTubeAPIKey)
	apiServer := api.New(st,
		api.WithSink(sink),
		api.WithMetrics(recorder),
		api.WithPreviews(previews),
		api.WithLogger(logger),
	)
	webServer, err := web.New(web.Options{
		TemplatesDir:   cfg.TemplatesDir,
		Sink:           sink,
		Metrics:        recorder,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	mux := http.NewServeMux()
	apiServer.Register(mux)
	webServer.Register(mux)
	return logging.NewHTTPLogger(logger, 0).Middleware(mux), nil
}
