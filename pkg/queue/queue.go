// Package queue runs background jobs over a pluggable driver.
//
//	queue.Register(jobs.AuditName, func() queue.Job { return &jobs.Audit{} })
//	_ = queue.Dispatch(ctx, &jobs.Audit{Event: "pricing.updated"})
//	queue.StartWorkers(ctx, 2)
//
// Jobs are retried in-process; a job that exhausts its attempts is kept in
// memory and handed to the FailedStore when one is configured.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

// Job is one unit of background work. It must round-trip through JSON.
type Job interface {
	Handle(ctx context.Context) error
}

// Named lets a job choose its registry name; otherwise %T is used.
type Named interface {
	JobName() string
}

// Driver moves encoded envelopes. Pop blocks until a payload arrives or ctx
// ends; a (nil, nil) return means "nothing yet, poll again".
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// FailedStore persists jobs that exhausted their retries.
type FailedStore interface {
	Save(ctx context.Context, f FailedJob) error
}

var ErrUnknownJob = errors.New("queue: unregistered job type")

// FailedJob is a job that ran out of attempts.
type FailedJob struct {
	ID       string          `json:"id" bson:"job_id"`
	Type     string          `json:"type" bson:"type"`
	Payload  json.RawMessage `json:"payload" bson:"payload"`
	Error    string          `json:"error" bson:"error"`
	Attempts int             `json:"attempts" bson:"attempts"`
	FailedAt time.Time       `json:"failedAt" bson:"failed_at"`
}

type envelope struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	DispatchedAt time.Time       `json:"dispatchedAt"`
}

// Manager holds the driver, the job registry and the failure log.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	store    FailedStore
	registry map[string]func() Job
	failed   []FailedJob
	maxTries int
	backoff  func(attempt int) time.Duration
}

func NewManager(d Driver) *Manager {
	if d == nil {
		d = NewMemoryDriver(1000)
	}
	return &Manager{
		driver:   d,
		registry: map[string]func() Job{},
		maxTries: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

var defaultManager = NewManager(nil)

// Default is the process-wide manager used by the package-level functions.
func Default() *Manager { return defaultManager }

func SetDriver(d Driver) {
	defaultManager.SetDriver(d)
}

func UseFailedStore(s FailedStore) {
	defaultManager.UseFailedStore(s)
}

func Register(name string, factory func() Job) {
	defaultManager.Register(name, factory)
}

func Dispatch(ctx context.Context, job Job) error {
	return defaultManager.Dispatch(ctx, job)
}

func StartWorkers(ctx context.Context, n int) {
	defaultManager.StartWorkers(ctx, n)
}

func FailedJobs() []FailedJob {
	return defaultManager.FailedJobs()
}

func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	m.driver = d
	m.mu.Unlock()
}

func (m *Manager) UseFailedStore(s FailedStore) {
	m.mu.Lock()
	m.store = s
	m.mu.Unlock()
}

// SetMaxTries sets how many times a job runs before it is recorded as failed.
func (m *Manager) SetMaxTries(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.maxTries = n
	m.mu.Unlock()
}

// SetBackoff replaces the delay between attempts.
func (m *Manager) SetBackoff(fn func(attempt int) time.Duration) {
	m.mu.Lock()
	m.backoff = fn
	m.mu.Unlock()
}

// Register makes a job type decodable by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	m.registry[name] = factory
	m.mu.Unlock()
}

func jobName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

// Dispatch encodes job and pushes it on the driver.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	name := jobName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	raw, err := json.Marshal(envelope{
		ID:           uuid.NewString(),
		Type:         name,
		Payload:      payload,
		DispatchedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()
	return d.Push(ctx, raw)
}

// StartWorkers launches n workers that run until ctx is cancelled.
func (m *Manager) StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go m.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		if err := m.Process(ctx, raw); err != nil {
			logger.Warn("queue: job not processed", "error", err)
		}
	}
}

// Process decodes one envelope and runs it with retries. It returns an error
// only when the envelope could not be decoded; handler failures end up in
// FailedJobs.
func (m *Manager) Process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return fmt.Errorf("queue: unmarshal %s: %w", env.Type, err)
	}
	m.run(ctx, env, job)
	return nil
}

func (m *Manager) run(ctx context.Context, env envelope, job Job) {
	m.mu.RLock()
	tries, backoff := m.maxTries, m.backoff
	m.mu.RUnlock()

	log := logger.WithCtx(ctx).With("job_id", env.ID, "type", env.Type)
	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= tries; attempt++ {
		attempts = attempt
		start := time.Now()
		err := job.Handle(ctx)
		if err == nil {
			metrics.RecordQueueJob(env.Type, "success", start)
			log.Debug("queue: job processed", "attempt", attempt)
			return
		}
		lastErr = err
		metrics.RecordQueueJob(env.Type, "retry", start)
		log.Warn("queue: job failed", "attempt", attempt, "error", err)
		if attempt < tries && !sleep(ctx, backoff(attempt)) {
			break
		}
	}

	m.fail(ctx, FailedJob{
		ID:       env.ID,
		Type:     env.Type,
		Payload:  env.Payload,
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	})
}

func (m *Manager) fail(ctx context.Context, f FailedJob) {
	metrics.QueueJobsProcessed.WithLabelValues(f.Type, "failed").Inc()

	m.mu.Lock()
	m.failed = append(m.failed, f)
	store := m.store
	m.mu.Unlock()

	log := logger.WithCtx(ctx)
	log.Error("queue: job exhausted retries", "job_id", f.ID, "type", f.Type, "error", f.Error)
	if store == nil {
		return
	}
	if err := store.Save(context.WithoutCancel(ctx), f); err != nil {
		log.Error("queue: persist failed job", "job_id", f.ID, "error", err)
	}
}

// FailedJobs is a snapshot of the in-memory failure log.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

// sleep waits d or until ctx ends; it reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
