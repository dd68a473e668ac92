package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/corpus"
	"github.com/truelens/truelens/internal/explain"
	"github.com/truelens/truelens/internal/extract"
	"github.com/truelens/truelens/internal/llm"
	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/pipeline"
	"github.com/truelens/truelens/internal/results"
	"github.com/truelens/truelens/internal/score"
	"github.com/truelens/truelens/internal/search"
	"github.com/truelens/truelens/internal/semantic"
	"github.com/truelens/truelens/internal/verify"
)

// loadConfig merges defaults, the config file, and environment variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// API keys come from the environment unless set in the config file.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("SERPAPI_API_KEY")
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// initLogger builds the zap logger and installs it as the global logger.
func initLogger(cfg model.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// app wires the pipeline and its collaborators for one process lifetime.
type app struct {
	cfg      *model.Config
	log      *zap.Logger
	pipeline *pipeline.Pipeline
	corpus   *corpus.Store
	results  *results.Store
}

// buildApp assembles the full pipeline from configuration. The corpus store
// gets its embeddings backfilled here, before any session is processed.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	backend, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, err
	}

	store, err := corpus.Open(cfg.Corpus.Path, logger)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureEmbeddings(ctx, backend); err != nil {
		logger.Warn("corpus embedding backfill incomplete", zap.Error(err))
	}

	searcher := search.NewSerpClient(cfg.Search, cfg.Cache, logger)
	resultStore := results.NewStore(cfg.Results.Dir, logger)

	p := pipeline.New(
		nil, // media analysis is attached by the capture service, not here
		extract.NewExtractor(backend, logger),
		score.NewScorer(logger),
		semantic.NewDetector(backend, store, cfg.Corpus, cfg.Cache, logger),
		verify.NewVerifier(backend, searcher, search.DefaultTrustedSources(), cfg.Verify, logger),
		explain.NewExplainer(),
		resultStore,
		logger,
	)

	return &app{
		cfg:      cfg,
		log:      logger,
		pipeline: p,
		corpus:   store,
		results:  resultStore,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if err := a.corpus.Close(); err != nil {
		a.log.Warn("corpus close failed", zap.Error(err))
	}
	_ = a.log.Sync()
}
