package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hackguide/advisor/internal/catalog"
	"github.com/hackguide/advisor/internal/config"
	"github.com/hackguide/advisor/internal/llm"
	"github.com/hackguide/advisor/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "advisor",
		Short:        "Stack advice for hackathon builders",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newAdviseCmd(),
		newToolsCmd(),
		newTokenCmd(),
	)
	return root
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

// loadCatalog reads the catalog from Postgres, then the YAML catalog file,
// then the built-in data. Any failure falls through to the next source.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) *catalog.Index {
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		sections, err := loadPostgresCatalog(ctx, dsn)
		if err == nil {
			logger.Info("catalog loaded from postgres", zap.Int("sections", len(sections)))
			return catalog.Build(sections)
		}
		logger.Warn("postgres catalog unavailable, falling back", zap.Error(err))
	}
	if path := cfg.CatalogFile; path != "" {
		sections, err := catalog.LoadFile(path)
		if err == nil {
			logger.Info("catalog loaded from file", zap.String("path", path), zap.Int("sections", len(sections)))
			return catalog.Build(sections)
		}
		logger.Warn("catalog file unavailable, falling back", zap.String("path", path), zap.Error(err))
	}
	return catalog.Default()
}

func loadPostgresCatalog(ctx context.Context, dsn string) ([]catalog.Section, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("loadPostgresCatalog: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("loadPostgresCatalog: %w", err)
	}
	sections, err := store.NewStore(db).LoadSections(ctx)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, errors.New("loadPostgresCatalog: catalog tables are empty")
	}
	return sections, nil
}

// buildModel returns the configured provider wrapped with logging and retry.
// A missing credential yields a nil model; the advisor then reports it per
// request.
func buildModel(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (llm.ChatModel, error) {
	var (
		model llm.ChatModel
		err   error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		model, err = llm.NewGeminiClient(ctx, cfg.APIKey())
	default:
		model, err = llm.NewOpenAIClient(cfg.APIKey(), cfg.OpenAIBaseURL, cfg.Timeout.Duration)
	}
	if errors.Is(err, llm.ErrMissingCredential) {
		logger.Warn("model credential missing, chat requests will fail",
			zap.String("provider", cfg.Provider),
			zap.String("credential", cfg.CredentialName()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("buildModel: %w", err)
	}
	return llm.Wrap(model,
		llm.Logging(logger),
		llm.Retry(cfg.MaxAttempts, cfg.RetryBaseDelay.Duration),
	), nil
}
