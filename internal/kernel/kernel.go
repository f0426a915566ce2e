// Package kernel boots the shop: infrastructure connections, the queue,
// event listeners, and the repository → service → controller graph.
package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/app/controllers"
	"github.com/shashiranjanraj/laundry/app/jobs"
	"github.com/shashiranjanraj/laundry/app/listeners"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/app/routes"
	"github.com/shashiranjanraj/laundry/app/schema"
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/app"
	"github.com/shashiranjanraj/laundry/pkg/cache"
	"github.com/shashiranjanraj/laundry/pkg/database"
	gql "github.com/shashiranjanraj/laundry/pkg/graphql"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/mail"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
	"github.com/shashiranjanraj/laundry/pkg/queue"
	"github.com/shashiranjanraj/laundry/pkg/router"
	"github.com/shashiranjanraj/laundry/pkg/schedule"
	"github.com/shashiranjanraj/laundry/pkg/sse"
	"github.com/shashiranjanraj/laundry/pkg/storage"
	"github.com/shashiranjanraj/laundry/pkg/ws"
)

// AMQPQueue is the RabbitMQ queue jobs go through when QUEUE_DRIVER=amqp.
const AMQPQueue = "laundry.jobs"

// FailedJobRetention is how long failed_jobs rows are kept.
const FailedJobRetention = 30 * 24 * time.Hour

// Kernel is a booted shop.
type Kernel struct {
	Hub         *ws.Hub
	Events      *sse.Broker
	Controllers routes.Controllers
	Schema      graphql.Schema

	closers []func(context.Context)
}

// Boot loads config and opens every connection. Mongo is required; Redis
// falls back to the in-memory cache with a warning.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: config: %w", err)
	}

	k := &Kernel{}
	if err := database.Connect(ctx); err != nil {
		return nil, err
	}
	k.closers = append(k.closers, func(ctx context.Context) { _ = database.Disconnect(ctx) })

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("kernel: redis unavailable, using in-memory cache", "error", err)
	}
	storage.Connect(ctx)

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		if err := k.teeLogs(ctx, uri); err != nil {
			logger.Warn("kernel: mongo log sink disabled", "error", err)
		}
	}

	if err := k.bootQueue(); err != nil {
		k.Close(ctx)
		return nil, err
	}

	k.Hub = ws.NewHub()
	k.Events = sse.NewBroker("price")
	listeners.Register(listeners.Fanout{k.Hub, k.Events}, queue.Dispatch)

	if err := k.build(database.DB); err != nil {
		k.Close(ctx)
		return nil, err
	}
	return k, nil
}

func (k *Kernel) teeLogs(ctx context.Context, uri string) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	h := logger.NewMongoHandler(client.Database(config.MongoDatabase()), "logs", slog.LevelInfo)
	logger.Tee(h)
	k.closers = append(k.closers, func(ctx context.Context) {
		h.Close()
		_ = client.Disconnect(ctx)
	})
	return nil
}

func (k *Kernel) bootQueue() error {
	switch config.QueueDriver() {
	case "redis":
		if cache.RDB == nil {
			return fmt.Errorf("kernel: QUEUE_DRIVER=redis but redis is not connected")
		}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB, ""))
	case "amqp":
		d, err := queue.NewAMQPDriver(config.AMQPURL(), AMQPQueue)
		if err != nil {
			return fmt.Errorf("kernel: %w", err)
		}
		queue.SetDriver(d)
		k.closers = append(k.closers, func(context.Context) { _ = d.Close() })
	}
	queue.UseFailedStore(queue.NewMongoFailedStore(database.DB))
	jobs.Register(queue.Default())
	return nil
}

func (k *Kernel) build(db *mongo.Database) error {
	users := repositories.NewUserRepository(db)
	pricing := services.NewPricingService(repositories.NewPricingRepository(db))
	roles := services.NewRoleService(users)
	stars := services.NewStarService(repositories.NewStarRepository(db))

	k.Controllers = routes.Controllers{
		Auth:          controllers.NewAuthController(services.NewAuthService(users, mail.Default())),
		Review:        controllers.NewReviewController(roles),
		Pricing:       controllers.NewPricingController(pricing),
		Gcash:         controllers.NewGcashController(services.NewGcashService(repositories.NewGcashRepository(db), storage.Default)),
		Star:          controllers.NewStarController(stars),
		PricingFeed:   k.Hub,
		PricingEvents: k.Events,
	}

	s, err := schema.New(schema.Resolvers{Pricing: pricing, Roles: roles, Stars: stars})
	if err != nil {
		return fmt.Errorf("kernel: graphql schema: %w", err)
	}
	k.Schema = s
	return nil
}

// App assembles the servers. workers is the number of in-process queue
// workers; 0 leaves jobs to a separate `queue:work`.
func (k *Kernel) App(workers int) *app.Application {
	a := app.New().
		Routes(func(r *router.Router) { routes.RegisterAPI(r, k.Controllers) }).
		Routes(func(r *router.Router) {
			r.Handle("/graphql", "graphql", gql.Handler(k.Schema), middleware.OptionalAuth)
		}).
		Probe("mongo", database.Ping).
		Background(k.Hub.Run).
		Background(k.Maintenance().Wait).
		OnShutdown(k.Close)

	if local, ok := storage.Default().(*storage.LocalDisk); ok {
		a.Mount("/storage/*", "storage", http.StripPrefix("/storage", local.Handler()))
	}
	if cache.RDB != nil {
		a.Probe("redis", func(ctx context.Context) error { return cache.RDB.Ping(ctx).Err() })
	}
	if workers > 0 {
		a.Background(func(ctx context.Context) { queue.StartWorkers(ctx, workers) })
	}
	return a
}

// Maintenance returns the scheduler for housekeeping cron jobs, not yet
// started.
func (k *Kernel) Maintenance() *Maintenance {
	s := schedule.New()
	s.Cron("0 3 * * *").Name("queue.prune_failed").WithoutOverlapping().Run(func(ctx context.Context) {
		n, err := queue.NewMongoFailedStore(database.DB).Prune(ctx, FailedJobRetention)
		if err != nil {
			logger.Error("kernel: prune failed jobs", "error", err)
			return
		}
		logger.Info("kernel: pruned failed jobs", "deleted", n)
	})
	return &Maintenance{s: s}
}

// Maintenance wraps the housekeeping scheduler.
type Maintenance struct{ s *schedule.Scheduler }

// Wait starts the scheduler and blocks until ctx ends and every task
// returned.
func (m *Maintenance) Wait(ctx context.Context) {
	m.s.Start(ctx)
	<-ctx.Done()
	m.s.Wait()
}

func (m *Maintenance) List() []string { return m.s.List() }

// Close releases connections in reverse order of opening.
func (k *Kernel) Close(ctx context.Context) {
	for i := len(k.closers) - 1; i >= 0; i-- {
		k.closers[i](ctx)
	}
	k.closers = nil
}

// RouteTable builds the API routes without booting anything.
func RouteTable() *router.Router {
	a := app.New().
		Routes(func(r *router.Router) { routes.RegisterAPI(r, routes.Controllers{}) }).
		Routes(func(r *router.Router) {
			r.Handle("/graphql", "graphql", http.NotFoundHandler())
		})
	return a.Router()
}
