package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

var (
	Client *mongo.Client
	DB     *mongo.Database

	// ErrNotConnected is returned by Ping before Connect succeeded.
	ErrNotConnected = errors.New("database: not connected")
)

var pingBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
	Name:        "MongoDB",
	MaxRequests: 3,
	Interval:    10 * time.Second,
	Timeout:     10 * time.Second,
	ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
	OnStateChange: func(name string, from, to gobreaker.State) {
		logger.Warn("database: circuit breaker state change",
			slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
	},
})

// Connect opens the Mongo client and verifies the primary is reachable.
// Returns an error instead of calling log.Fatal so the caller can shut
// down gracefully.
func Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("database: ping: %w", err)
	}

	Client = client
	DB = client.Database(config.MongoDatabase())
	return nil
}

// Ping checks liveness through a circuit breaker so a dead server fails fast
// for health probes.
func Ping(ctx context.Context) error {
	if Client == nil {
		return ErrNotConnected
	}
	_, err := pingBreaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return nil, Client.Ping(ctx, readpref.Primary())
	})
	return err
}

// Disconnect closes the client. No-op when not connected.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	err := Client.Disconnect(ctx)
	Client, DB = nil, nil
	return err
}

// IsNotFound reports whether err means "no document matched".
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err came from a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
