package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/doc-analyzer/internal/async"
	"github.com/joseph-ayodele/doc-analyzer/internal/cache"
	"github.com/joseph-ayodele/doc-analyzer/internal/common"
	"github.com/joseph-ayodele/doc-analyzer/internal/core"
	"github.com/joseph-ayodele/doc-analyzer/internal/export"
	"github.com/joseph-ayodele/doc-analyzer/internal/ingest"
	"github.com/joseph-ayodele/doc-analyzer/internal/repository"
	"github.com/joseph-ayodele/doc-analyzer/internal/server"
	"github.com/joseph-ayodele/doc-analyzer/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	var cl closers
	defer cl.run()

	app, err := buildApp(ctx, cfg, logger, &cl, async.NewWorkerQueue(logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	))
	if err != nil {
		return err
	}
	deps := app.deps

	static := cache.NewStaticCache(cfg.Server.StaticDir, cfg.Cache.StaticEntries, logger)
	static.Preload()
	deps.Static = static

	srv := server.NewServer(server.Config{Production: cfg.Server.Production()}, deps, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.HTTPAddr, cfg.Server.ShutdownTimeout)
	})
	if cfg.Server.GRPCAddr != "" {
		hs := server.NewHealthServer(srv, 0, logger)
		g.Go(func() error {
			return hs.Serve(gctx, cfg.Server.GRPCAddr)
		})
	}

	logger.Info("doc-analyzer started",
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
		"storage", app.catalog.Store().Driver(),
		"provider", deps.Processor.ProviderName(),
		"registry", deps.DB != nil,
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("doc-analyzer stopped")
	return nil
}

type app struct {
	catalog *storage.Catalog
	deps    server.Deps
}

// buildApp wires storage, analysis, the registry and the processor. queue
// runs registry and event jobs; it is drained before the registry closes.
func buildApp(ctx context.Context, cfg *common.Config, logger *slog.Logger, cl *closers, queue async.Queue) (app, error) {
	store, err := newObjectStore(cfg.Storage, logger)
	if err != nil {
		return app{}, err
	}
	catalog := storage.NewCatalog(store, storage.CatalogConfig{
		ListLimit:   cfg.Storage.ListLimit,
		ListTimeout: cfg.Storage.ListTimeout,
		OpTimeout:   cfg.Storage.OpTimeout,
	}, logger)
	if err := storage.EnsureBucket(ctx, store, logger); err != nil {
		// uploads still get analyzed; storage is reported as skipped
		logger.Warn("storage.unavailable", "driver", store.Driver(), "error", err)
	}

	analyzer, err := newAnalysisService(ctx, cfg, logger, cl)
	if err != nil {
		return app{}, err
	}
	db, err := openRegistry(ctx, cfg.Database, logger, cl)
	if err != nil {
		return app{}, err
	}
	publisher := newPublisher(cfg.Events, logger, cl)
	cl.add(func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		queue.Shutdown(sctx)
	})

	pipeline := ingest.NewPipeline(ingest.Config{
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
		BufferTimeout:  cfg.Ingest.BufferTimeout,
	}, newExtractor(cfg.Extract, logger), logger)

	opts := []core.Option{
		core.WithCatalog(catalog),
		core.WithPublisher(publisher),
		core.WithQueue(queue),
	}
	deps := server.Deps{Catalog: catalog}
	if db != nil {
		docs := repository.NewDocumentRepository(db, logger)
		opts = append(opts, core.WithRegistry(docs))
		deps.Documents = docs
		deps.DB = db
		deps.Exporter = export.NewService(docs, logger)
	}
	deps.Processor = core.NewProcessor(pipeline, analyzer, logger, opts...)
	return app{catalog: catalog, deps: deps}, nil
}
