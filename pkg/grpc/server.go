// Package grpc exposes the standard grpc.health.v1 service so load balancers
// can probe the shop without going through HTTP.
//
// Each registered Probe becomes a named service in the health server; the
// empty service name is SERVING only while every probe passes.
//
//	srv, err := grpc.Start(ctx, "9090", map[string]grpc.Probe{"mongo": database.Ping})
//	defer grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

// Probe reports whether one dependency is healthy.
type Probe func(ctx context.Context) error

// ProbeInterval is how often probes are re-run.
var ProbeInterval = 10 * time.Second

var (
	grpcRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laundry",
		Name:      "grpc_server_handled_total",
		Help:      "Total number of gRPC calls completed by method and code.",
	}, []string{"grpc_method", "grpc_code"})

	grpcRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "laundry",
		Name:      "grpc_server_handling_seconds",
		Help:      "gRPC response latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"grpc_method"})
)

func init() {
	_ = metrics.Register(grpcRequestsTotal)
	_ = metrics.Register(grpcRequestDuration)
}

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	grpcRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	logger.Debug("grpc: request",
		slog.String("method", info.FullMethod),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.String("code", code.String()),
	)
	return resp, err
}

// NewServer builds the server with health and reflection registered and
// returns the health server so callers can drive statuses.
func NewServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	return srv, hs
}

// Start listens on port, serves in the background and runs probes until ctx
// ends.
func Start(ctx context.Context, port string, probes map[string]Probe) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on :%s: %w", port, err)
	}
	srv, hs := NewServer()
	go Watch(ctx, hs, probes)

	logger.Info("grpc: health server starting", "addr", lis.Addr().String())
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	return srv, nil
}

// Watch runs probes immediately and then every ProbeInterval.
func Watch(ctx context.Context, hs *health.Server, probes map[string]Probe) {
	check := func() {
		overall := grpc_health_v1.HealthCheckResponse_SERVING
		for name, probe := range probes {
			st := grpc_health_v1.HealthCheckResponse_SERVING
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			if err := probe(pctx); err != nil {
				st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
				overall = st
				logger.Warn("grpc: probe failed", "service", name, "error", err)
			}
			cancel()
			hs.SetServingStatus(name, st)
		}
		hs.SetServingStatus("", overall)
	}

	check()
	ticker := time.NewTicker(ProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}

// Stop waits for in-flight RPCs and stops the server.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("grpc: health server shutting down")
	srv.GracefulStop()
}
