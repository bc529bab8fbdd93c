// Package grpchealth exposes the standard gRPC health service for the chat proxy.
package grpchealth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the chat proxy.
const ServiceName = "restwell.chat"

const defaultRefreshInterval = 15 * time.Second

// Server serves grpc.health.v1.Health. The chat service is SERVING while
// ready reports true.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	ready    func() bool
	interval time.Duration
}

// NewServer creates a health server. A non-positive interval uses 15s.
func NewServer(ready func() bool, interval time.Duration) *Server {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	s := &Server{
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
		ready:    ready,
		interval: interval,
	}
	grpc_health_v1.RegisterHealthServer(s.grpc, s.health)
	s.Refresh()
	return s
}

// Refresh updates the chat service status from the readiness check.
func (s *Server) Refresh() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if s.ready != nil && s.ready() {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Start listens on addr and serves in the background. The status is
// refreshed periodically and the server stops when ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	go func() {
		if err := s.Serve(lis); err != nil {
			slog.Error("gRPC health server stopped", "error", err)
		}
	}()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.Stop()
				return
			case <-ticker.C:
				s.Refresh()
			}
		}
	}()

	slog.Info("gRPC health server listening", "addr", lis.Addr().String())
	return nil
}

// Stop marks every service NOT_SERVING and stops the server.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
