package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-analyzer/internal/cache"
	"github.com/joseph-ayodele/doc-analyzer/internal/core"
	"github.com/joseph-ayodele/doc-analyzer/internal/export"
	"github.com/joseph-ayodele/doc-analyzer/internal/repository"
	"github.com/joseph-ayodele/doc-analyzer/internal/storage"
)

type Config struct {
	Production     bool
	HealthTimeout  time.Duration // per collaborator probe, default 3s
	AnalysisLookup time.Duration // default 45s
	DocumentsLimit int           // default 100
	ExportLimit    int           // 0 exports everything
}

// Deps are the collaborators behind the HTTP surface. Only Processor is
// required; the routes backed by a nil dependency report it unavailable.
type Deps struct {
	Processor *core.Processor
	Catalog   *storage.Catalog
	Documents repository.DocumentRepository
	DB        *repository.DB
	Exporter  *export.Service
	Static    *cache.StaticCache
}

// Server holds the state for the REST API server.
type Server struct {
	cfg    Config
	deps   Deps
	router *gin.Engine
	logger *slog.Logger
}

func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 3 * time.Second
	}
	if cfg.AnalysisLookup <= 0 {
		cfg.AnalysisLookup = 45 * time.Second
	}
	if cfg.DocumentsLimit <= 0 {
		cfg.DocumentsLimit = 100
	}
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestContext(logger))
	s := &Server{cfg: cfg, deps: deps, router: r, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/upload", s.handleUpload)
	api.GET("/files", s.handleListFiles)
	api.GET("/analysis", s.handleGetAnalysis)
	api.GET("/download", s.handleDownload)
	api.GET("/documents", s.handleListDocuments)
	api.GET("/export", s.handleExport)

	s.router.GET("/", s.handleIndex)
	s.router.NoRoute(s.handleStatic)
}

type connKey struct{}

// connContext exposes each request's connection to handlers through the
// request context.
func connContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, connKey{}, c)
}

func connFromContext(ctx context.Context) net.Conn {
	c, _ := ctx.Value(connKey{}).(net.Conn)
	return c
}

func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ConnContext:       connContext,
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := s.httpServer(addr)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http.listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http.shutting_down", "timeout", shutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
