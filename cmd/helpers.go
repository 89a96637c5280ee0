package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ziadkadry99/scopedoc/internal/archive"
	"github.com/ziadkadry99/scopedoc/internal/audit"
	"github.com/ziadkadry99/scopedoc/internal/config"
	"github.com/ziadkadry99/scopedoc/internal/db"
	"github.com/ziadkadry99/scopedoc/internal/delivery"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/interview"
	"github.com/ziadkadry99/scopedoc/internal/llm"
	"github.com/ziadkadry99/scopedoc/internal/logging"
	"github.com/ziadkadry99/scopedoc/internal/session"
	"github.com/ziadkadry99/scopedoc/internal/topics"
)

// loadConfig loads and validates the config and sets up logging.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w\nRun `scopedoc init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logging.Setup(level), nil
}

// loadFeatureCatalog returns the configured catalog or the built-in one.
func loadFeatureCatalog(cfg *config.Config) (*features.Catalog, error) {
	if cfg == nil || cfg.FeatureCatalog == "" {
		return features.DefaultCatalog()
	}
	data, err := os.ReadFile(cfg.FeatureCatalog)
	if err != nil {
		return nil, fmt.Errorf("reading feature catalog: %w", err)
	}
	return features.ParseCatalog(data)
}

func loadTopicCatalog(cfg *config.Config) (*topics.Catalog, error) {
	if cfg.TopicCatalog == "" {
		return topics.DefaultCatalog()
	}
	data, err := os.ReadFile(cfg.TopicCatalog)
	if err != nil {
		return nil, fmt.Errorf("reading topic catalog: %w", err)
	}
	return topics.ParseCatalog(data)
}

// createLLMProviderFromConfig creates a metered, rate-limited provider.
func createLLMProviderFromConfig(cfg *config.Config) (*llm.MeteredProvider, error) {
	p, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM > 0 {
		p = llm.NewRateLimitedProvider(p, cfg.RateLimitRPM)
	}
	return llm.NewMeteredProvider(p), nil
}

func newArchive(cfg *config.Config) (archive.Store, error) {
	if !cfg.Archive.Enabled {
		return archive.NewMemoryStore(), nil
	}
	return archive.NewS3Store(archive.S3Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
}

// app bundles what the interview and server commands share.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *db.DB
	engine   *session.Engine
	provider *llm.MeteredProvider
}

func (a *app) Close() {
	a.engine.Close()
	a.db.Close()
}

// openApp wires the session engine from config. With withGenerator the
// model provider must be configured; without it NextQuestion is disabled.
func openApp(withGenerator bool) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	topicCatalog, err := loadTopicCatalog(cfg)
	if err != nil {
		return nil, err
	}
	featureCatalog, err := loadFeatureCatalog(cfg)
	if err != nil {
		return nil, err
	}
	for _, issue := range featureCatalog.Issues() {
		logger.Warn("feature catalog entry skipped", "feature", issue.FeatureID, "reason", issue.Message)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	arch, err := newArchive(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	dispatcher := delivery.NewDispatcher(delivery.NewStore(database), arch, delivery.Config{
		WebhookURL:  cfg.Delivery.WebhookURL,
		MaxAttempts: cfg.Delivery.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Delivery.BaseDelayMS) * time.Millisecond,
	}, logger)

	a := &app{cfg: cfg, logger: logger, db: database}
	opts := session.Options{
		Store:     session.NewStore(database),
		CacheSize: cfg.SessionCacheSize,
		Topics:    topicCatalog,
		Features:  featureCatalog,
		Audit:     audit.NewStore(database),
		Delivery:  dispatcher,
		OutputDir: cfg.OutputDir,
		Logger:    logger,
	}
	if withGenerator {
		a.provider, err = createLLMProviderFromConfig(cfg)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
		opts.Generator = interview.NewGenerator(a.provider, cfg.Model, logger)
	}

	a.engine, err = session.NewEngine(opts)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}
