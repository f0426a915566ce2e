package app

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/internal/server"
	"github.com/shashiranjanraj/laundry/pkg/grpc"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// Serve starts the background tasks, the gRPC health server when GRPC_PORT
// is set, and the HTTP server on APP_PORT. It returns after ctx is done and
// everything has stopped.
func (a *Application) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, fn := range a.background {
		fn := fn
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	if port := config.GRPCPort(); port != "" {
		srv, err := grpc.Start(ctx, port, a.probes)
		if err != nil {
			return err
		}
		defer grpc.Stop(srv)
	}

	err := server.Serve(ctx, ":"+config.AppPort(), a.Handler())
	cancel()
	wg.Wait()

	stopCtx, stop := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer stop()
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		a.shutdown[i](stopCtx)
	}
	logger.Info("app: stopped")
	return err
}
