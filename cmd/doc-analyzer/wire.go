package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/analysis"
	"github.com/joseph-ayodele/doc-analyzer/internal/cache"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/events"
	"github.com/joseph-ayodele/doc-analyzer/internal/extract"
	"github.com/joseph-ayodele/doc-analyzer/internal/repository"
	"github.com/joseph-ayodele/doc-analyzer/internal/storage"
)

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func newExtractor(cfg common.ExtractConfig, logger *slog.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.Config{
		MaxPages:       cfg.MaxPages,
		MaxChars:       cfg.MaxChars,
		FallbackTopN:   cfg.FallbackTopN,
		DetectLanguage: cfg.DetectLanguage,
	}, logger)
}

func newObjectStore(cfg common.StorageConfig, logger *slog.Logger) (storage.ObjectStore, error) {
	if cfg.Driver == constants.StorageMemory {
		logger.Warn("storage.memory_driver", "bucket", cfg.Bucket, "note", "uploads are lost on restart")
		return storage.NewMemoryStore(cfg.Bucket), nil
	}
	return storage.NewMinIOStore(storage.MinIOConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	}, logger)
}

// newAnalysisCache is an in-process LRU, fronting Redis when REDIS_ADDR is
// set and reachable.
func newAnalysisCache(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger, cl *closers) (analysis.Cache, error) {
	local, err := cache.NewLRU(cfg.AnalysisEntries)
	if err != nil {
		return nil, err
	}
	if cfg.RedisAddr == "" {
		return local, nil
	}
	shared, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.RedisTTL,
	}, logger)
	if err != nil {
		logger.Warn("cache.redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		return local, nil
	}
	cl.add(func() { _ = shared.Close() })
	return cache.NewTiered(local, shared), nil
}

func newAnalysisService(ctx context.Context, cfg *common.Config, logger *slog.Logger, cl *closers) (*analysis.Service, error) {
	provider, err := analysis.NewProvider(ctx, cfg.Analysis, logger)
	if err != nil {
		return nil, err
	}
	opts := []analysis.Option{}
	if provider != nil {
		opts = append(opts, analysis.WithProvider(provider))
		if c, ok := provider.(io.Closer); ok {
			cl.add(func() { _ = c.Close() })
		}
	}
	ac, err := newAnalysisCache(ctx, cfg.Cache, logger, cl)
	if err != nil {
		return nil, err
	}
	opts = append(opts, analysis.WithCache(ac))
	return analysis.NewService(analysis.Config{
		Timeout:     cfg.Analysis.Timeout,
		PromptChars: cfg.Analysis.PromptChars,
	}, logger, opts...), nil
}

// openRegistry returns nil when no DSN is configured and the driver is not
// sqlite (which defaults to an in-memory database).
func openRegistry(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger, cl *closers) (*repository.DB, error) {
	if cfg.DSN == "" && cfg.Driver != "sqlite" {
		logger.Info("registry.disabled", "reason", "DB_URL not set")
		return nil, nil
	}
	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Driver,
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	cl.add(func() { db.Close(logger) })
	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, logger); err != nil {
		return nil, err
	}
	return db, nil
}

// newPublisher falls back to dropping events when the broker is unset or
// unreachable.
func newPublisher(cfg common.EventsConfig, logger *slog.Logger, cl *closers) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.Nop{}
	}
	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.Queue, 5, 2*time.Second, logger)
	if err != nil {
		logger.Warn("events.amqp_unavailable", "queue", cfg.Queue, "error", err)
		return events.Nop{}
	}
	cl.add(func() { _ = pub.Close() })
	return pub
}
