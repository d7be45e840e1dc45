package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported alongside the
// overall ("") status.
const ServiceName = "sparki"

// GRPCServer serves the standard gRPC health protocol, mirroring the
// monitor status.
type GRPCServer struct {
	monitor  *Monitor
	port     int
	interval time.Duration
	health   *grpchealth.Server
	server   *grpc.Server
}

// NewGRPCServer creates a gRPC health server refreshed every interval.
func NewGRPCServer(monitor *Monitor, port int, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := grpchealth.NewServer()
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCServer{
		monitor:  monitor,
		port:     port,
		interval: interval,
		health:   hs,
		server:   srv,
	}
}

// Start listens and serves until Stop. The serving status is refreshed in
// the background until ctx is cancelled.
func (g *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("failed to listen for grpc health: %w", err)
	}

	g.Refresh(ctx)
	go g.refreshLoop(ctx)

	slog.Info("gRPC health server listening", "addr", lis.Addr().String())
	if err := g.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (g *GRPCServer) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Refresh(ctx)
		}
	}
}

// Refresh sets the serving status from a fresh health check.
func (g *GRPCServer) Refresh(ctx context.Context) {
	report := g.monitor.CheckHealth(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if report.SystemStatus == StatusCritical {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(ServiceName, status)
}

// Stop gracefully stops the server.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}
