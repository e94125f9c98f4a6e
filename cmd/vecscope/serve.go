package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope"
	"github.com/kailas-cloud/vecscope/internal/config"
	logpkg "github.com/kailas-cloud/vecscope/internal/logger"
	chiTransport "github.com/kailas-cloud/vecscope/internal/transport/chi"
	healthuc "github.com/kailas-cloud/vecscope/internal/usecase/health"
	"github.com/kailas-cloud/vecscope/internal/usecase/query"
	"github.com/kailas-cloud/vecscope/internal/version"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger, err := logpkg.NewLogger(opts.env, logpkg.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, opts.env, &cfg, logger); err != nil {
		logger.Error("vecscope exited", zap.Error(err))
		return err
	}
	return nil
}

func run(ctx context.Context, env string, cfg *config.Config, logger *zap.Logger) error {
	build := version.Get()
	logger.Info("Starting vecscope gateway",
		zap.String("commit", build.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	opts, err := clientOptions(cfg, logger)
	if err != nil {
		return fmt.Errorf("client options: %w", err)
	}
	client, err := vecscope.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	defs, err := modelDefinitions(cfg.Models)
	if err != nil {
		return fmt.Errorf("models: %w", err)
	}
	queries, err := query.New(client, defs, query.Limits{
		DefaultSize:   cfg.Search.DefaultSize,
		MaxSize:       cfg.Search.MaxSize,
		ScanBatchSize: cfg.Search.ScanBatchSize,
		Scroll:        cfg.Search.Scroll,
	}, logger)
	if err != nil {
		return fmt.Errorf("models: %w", err)
	}

	if cfg.Storage.EnsureIndexes {
		created, err := queries.EnsureIndexes(ctx)
		if err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("Indexes ensured", zap.Strings("created", created))
	}

	server := chiTransport.NewServer(queries, healthuc.New(client, queries), logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys: cfg.Auth.APIKeys,
		RateLimit: chiTransport.RateLimit{
			PerSecond: cfg.HTTP.RateLimit.PerSecond,
			Burst:     cfg.HTTP.RateLimit.Burst,
		},
	}, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}
	logger.Info("Listening", zap.String("addr", srv.Addr), zap.Strings("models", queries.Models()))
	return serve(ctx, srv, cfg.HTTP.ShutdownTimeout, logger)
}

// serve runs srv until ctx is done, then drains it within grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, logger *zap.Logger) error {
	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("grace", grace))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// clientOptions maps the config onto client options.
func clientOptions(cfg *config.Config, logger *zap.Logger) ([]vecscope.Option, error) {
	if len(cfg.Database.Addrs) == 0 {
		return nil, errors.New("database.addrs is empty")
	}
	backends := map[string]func(addr, password string) vecscope.Option{
		"redis":  vecscope.WithRedis,
		"valkey": vecscope.WithValkey,
	}
	with, ok := backends[cfg.Database.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	opts := []vecscope.Option{
		with(cfg.Database.Addrs[0], cfg.Database.Password),
		vecscope.WithAddrs(cfg.Database.Addrs...),
		vecscope.WithKeyPrefix(cfg.Storage.KeyPrefix),
		vecscope.WithReadinessTimeout(cfg.Database.ReadinessTimeout),
		vecscope.WithLogger(logger),
		vecscope.WithPrometheus(prometheus.DefaultRegisterer),
	}
	if cfg.Templates.Path == "" {
		return opts, nil
	}
	tmpl, err := vecscope.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return append(opts, vecscope.WithTemplates(tmpl)), nil
}
