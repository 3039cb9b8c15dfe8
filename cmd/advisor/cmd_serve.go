package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackguide/advisor/internal/advisor"
	"github.com/hackguide/advisor/internal/api"
	"github.com/hackguide/advisor/internal/chread"
	"github.com/hackguide/advisor/internal/config"
	"github.com/hackguide/advisor/internal/server"
	"github.com/hackguide/advisor/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "HTTP port (overrides ADVISOR_HTTP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("starting advisor",
		zap.String("http_port", cfg.HTTPPort),
		zap.String("env", cfg.Env),
		zap.String("provider", cfg.Model.Provider),
		zap.String("stack_model", cfg.Model.StackModel),
		zap.String("chat_model", cfg.Model.ChatModel),
	)

	idx := loadCatalog(ctx, cfg, logger)
	model, err := buildModel(ctx, cfg.Model, logger)
	if err != nil {
		return err
	}

	// Storage: ClickHouse or LogWriter fallback
	var writer storage.EventWriter
	if dsn := cfg.Storage.ClickHouseDSN; dsn != "" {
		chWriter, err := storage.NewClickHouseWriter(dsn, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer", zap.Error(err))
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	deps := &api.Dependencies{
		Advisor: advisor.New(advisor.Options{
			Model:          model,
			CredentialName: cfg.Model.CredentialName(),
			Catalog:        idx,
			StackModel:     cfg.Model.StackModel,
			ChatModel:      cfg.Model.ChatModel,
			Writer:         writer,
			Logger:         logger,
		}),
		Catalog:        idx,
		AdminTokenHash: cfg.Admin.TokenHash,
		CacheTTL:       cfg.Admin.CacheTTL.Duration,
		Logger:         logger,
	}

	// ClickHouse reader for the analytics endpoint
	if dsn := cfg.Storage.ClickHouseDSN; dsn != "" {
		reader, err := chread.NewReader(dsn, logger)
		if err != nil {
			logger.Warn("clickhouse reader connection failed", zap.Error(err))
		} else {
			defer func() { _ = reader.Close() }()
			deps.Reader = reader
			logger.Info("clickhouse reader connected")
		}
	}
	if deps.Reader != nil && deps.AdminTokenHash == "" {
		logger.Info("no ADVISOR_ADMIN_TOKEN_HASH set, analytics endpoint disabled")
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var grpcLis net.Listener
	if cfg.GRPCPort != "" {
		grpcLis, err = net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if grpcLis != nil {
		healthSrv := server.NewHealthServer(model != nil, logger)
		g.Go(func() error {
			logger.Info("grpc health listening", zap.String("addr", grpcLis.Addr().String()))
			return healthSrv.Serve(grpcLis)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			healthSrv.Shutdown(shutdownCtx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server failed", zap.Error(err))
		return err
	}
	logger.Info("advisor stopped")
	return nil
}
