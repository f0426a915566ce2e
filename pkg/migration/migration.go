// Package migration runs ordered, tracked changes against the Mongo
// database (index builds, backfills).
//
// Register migrations from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_users_indexes", usersIndexes{})
//	}
//
// Ran migrations are recorded in the "migrations" collection together with
// their batch, so Rollback undoes the most recent `migrate` invocation.
package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// Collection tracks which migrations ran.
const Collection = "migrations"

// ErrNotRegistered means a recorded migration has no implementation.
var ErrNotRegistered = errors.New("migration: not registered")

// Migration is one reversible change.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

// Record is a row of the tracking collection.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"run_at"`
}

// Store persists Records.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Add(ctx context.Context, r Record) error
	Remove(ctx context.Context, name string) error
}

type registered struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []registered
)

// Register adds m under name. Names sort chronologically, so prefix them
// with a timestamp.
func Register(name string, m Migration) {
	mu.Lock()
	registry = append(registry, registered{name: name, m: m})
	mu.Unlock()
}

func sorted() []registered {
	mu.Lock()
	out := append([]registered(nil), registry...)
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ─── Runner ──────────────────────────────────────────────────────────────────

type Runner struct {
	db    *mongo.Database
	store Store
}

// New tracks migrations in db's migrations collection.
func New(db *mongo.Database) *Runner {
	return &Runner{db: db, store: NewMongoStore(db.Collection(Collection))}
}

// NewWithStore is New with a custom tracking store.
func NewWithStore(db *mongo.Database, store Store) *Runner {
	return &Runner{db: db, store: store}
}

// Pending lists registered migrations that have not run, oldest first.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	ran, err := r.ranSet(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, reg := range sorted() {
		if _, ok := ran[reg.name]; !ok {
			out = append(out, reg.name)
		}
	}
	return out, nil
}

func (r *Runner) ranSet(ctx context.Context) (map[string]Record, error) {
	recs, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: list ran: %w", err)
	}
	set := make(map[string]Record, len(recs))
	for _, rec := range recs {
		set[rec.Name] = rec
	}
	return set, nil
}

// Run applies every pending migration as one batch and returns the names
// applied. It stops at the first failure; earlier ones stay recorded.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	ran, err := r.ranSet(ctx)
	if err != nil {
		return nil, err
	}
	batch := 1
	for _, rec := range ran {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	var applied []string
	for _, reg := range sorted() {
		if _, ok := ran[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name, "batch", batch)
		if err := reg.m.Up(ctx, r.db); err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.store.Add(ctx, Record{Name: reg.name, Batch: batch, RunAt: time.Now().UTC()}); err != nil {
			return applied, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		applied = append(applied, reg.name)
	}
	if len(applied) == 0 {
		logger.Info("migration: nothing to migrate")
	}
	return applied, nil
}

// Rollback reverses the latest batch, newest first.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	recs, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: list ran: %w", err)
	}
	last := 0
	for _, rec := range recs {
		if rec.Batch > last {
			last = rec.Batch
		}
	}
	if last == 0 {
		return nil, nil
	}

	var batch []Record
	for _, rec := range recs {
		if rec.Batch == last {
			batch = append(batch, rec)
		}
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Name > batch[j].Name })

	impl := make(map[string]Migration)
	for _, reg := range sorted() {
		impl[reg.name] = reg.m
	}

	var undone []string
	for _, rec := range batch {
		m, ok := impl[rec.Name]
		if !ok {
			return undone, fmt.Errorf("%w: %s", ErrNotRegistered, rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(ctx, r.db); err != nil {
			return undone, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.store.Remove(ctx, rec.Name); err != nil {
			return undone, err
		}
		undone = append(undone, rec.Name)
	}
	return undone, nil
}

// Status is one line of `migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	ran, err := r.ranSet(ctx)
	if err != nil {
		return nil, err
	}
	var out []Status
	for _, reg := range sorted() {
		rec, ok := ran[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

// ─── Mongo store ─────────────────────────────────────────────────────────────

type MongoStore struct{ col *mongo.Collection }

func NewMongoStore(col *mongo.Collection) *MongoStore { return &MongoStore{col: col} }

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) Add(ctx context.Context, r Record) error {
	_, err := s.col.InsertOne(ctx, r)
	return err
}

func (s *MongoStore) Remove(ctx context.Context, name string) error {
	_, err := s.col.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	return err
}
