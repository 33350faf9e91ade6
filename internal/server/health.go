package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Health service names reported over gRPC. "" is the overall status.
const (
	HealthStorage  = "storage"
	HealthRegistry = "registry"
)

// HealthServer mirrors the HTTP health probe onto the standard gRPC health
// service, refreshed on an interval.
type HealthServer struct {
	srv      *Server
	grpc     *grpc.Server
	health   *health.Server
	interval time.Duration
	logger   *slog.Logger
}

func NewHealthServer(srv *Server, interval time.Duration, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	g := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(g, hs)
	return &HealthServer{srv: srv, grpc: g, health: hs, interval: interval, logger: logger}
}

// Refresh probes every collaborator once and publishes the statuses.
func (h *HealthServer) Refresh(ctx context.Context) {
	st := h.srv.probe(ctx)
	overall := grpc_health_v1.HealthCheckResponse_SERVING
	for name, v := range map[string]string{HealthStorage: st.storage, HealthRegistry: st.registry} {
		status := grpc_health_v1.HealthCheckResponse_SERVING
		if v == statusUnavailable {
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			overall = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
}

// Serve listens on addr until ctx is done.
func (h *HealthServer) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	h.Refresh(ctx)
	go h.loop(ctx)
	go func() {
		<-ctx.Done()
		h.health.Shutdown()
		h.grpc.GracefulStop()
	}()

	h.logger.Info("grpc.health_listening", "addr", addr)
	return h.grpc.Serve(lis)
}

func (h *HealthServer) loop(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Refresh(ctx)
		}
	}
}
