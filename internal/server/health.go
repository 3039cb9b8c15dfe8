// Package server exposes the gRPC health service used by load balancers and
// orchestrators that probe over gRPC instead of GET /healthz.
package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// AdvisorService is the service name probed for chat readiness.
const AdvisorService = "advisor.v1.Advisor"

// HealthServer reports process liveness on the empty service name and chat
// readiness on AdvisorService.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
}

// NewHealthServer builds the gRPC server. modelReady is false when no model
// credential is configured; chat requests then fail, so AdvisorService
// reports NOT_SERVING.
func NewHealthServer(modelReady bool, logger *zap.Logger) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	st := healthpb.HealthCheckResponse_SERVING
	if !modelReady {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus(AdvisorService, st)

	srv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogging(logger)))
	healthpb.RegisterHealthServer(srv, hs)
	return &HealthServer{grpc: srv, health: hs}
}

// Serve blocks until lis fails or the server stops.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Shutdown flips every service to NOT_SERVING so probes drain traffic, then
// stops gracefully or hard once ctx expires.
func (s *HealthServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
		<-done
	}
}

func unaryLogging(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
