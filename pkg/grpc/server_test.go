package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, probes map[string]Probe) grpc_health_v1.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv, hs := NewServer()
	ctx, cancel := context.WithCancel(context.Background())
	go Watch(ctx, hs, probes)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		cancel()
		srv.Stop()
	})

	conn, err := ggrpc.NewClient("passthrough:///bufnet",
		ggrpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		ggrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func checkStatus(t *testing.T, c grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := c.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
	return res.Status
}

func TestHealthServing(t *testing.T) {
	c := dial(t, map[string]Probe{"mongo": func(context.Context) error { return nil }})

	assert.Eventually(t, func() bool {
		return checkStatus(t, c, "") == grpc_health_v1.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, checkStatus(t, c, "mongo"))
}

func TestHealthFailingProbe(t *testing.T) {
	c := dial(t, map[string]Probe{
		"mongo": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("down") },
	})

	assert.Eventually(t, func() bool {
		return checkStatus(t, c, "redis") == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, checkStatus(t, c, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, checkStatus(t, c, "mongo"))
}
