package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/laundry/pkg/queue"
)

var handled atomic.Int32

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) JobName() string { return "echo" }
func (j *echoJob) Handle(context.Context) error {
	handled.Add(1)
	return nil
}

type failJob struct{}

func (failJob) JobName() string {
	return "fail"
}

func (*failJob) Handle(context.Context) error {
	return errors.New("always fails")
}

type recordingStore struct {
	mu   sync.Mutex
	jobs []queue.FailedJob
}

func (s *recordingStore) Save(_ context.Context, f queue.FailedJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, f)
	return nil
}

func newManager() (*queue.Manager, *queue.MemoryDriver) {
	d := queue.NewMemoryDriver(16)
	m := queue.NewManager(d)
	m.SetBackoff(func(int) time.Duration { return 0 })
	m.Register("echo", func() queue.Job { return &echoJob{} })
	m.Register("fail", func() queue.Job { return &failJob{} })
	return m, d
}

func TestDispatchEnvelope(t *testing.T) {
	m, d := newManager()
	require.NoError(t, m.Dispatch(context.Background(), &echoJob{Val: "hi"}))
	require.Equal(t, 1, d.Len())

	raw, err := d.Pop(context.Background())
	require.NoError(t, err)

	var env struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Len(t, env.ID, 36)
	assert.Equal(t, "echo", env.Type)
	assert.JSONEq(t, `{"val":"hi"}`, string(env.Payload))
}

func TestWorkersProcess(t *testing.T) {
	m, _ := newManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartWorkers(ctx, 2)

	before := handled.Load()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Dispatch(ctx, &echoJob{Val: "x"}))
	}
	assert.Eventually(t, func() bool { return handled.Load()-before == 5 }, time.Second, 5*time.Millisecond)
}

func TestExhaustedJobIsStored(t *testing.T) {
	m, d := newManager()
	m.SetMaxTries(2)
	store := &recordingStore{}
	m.UseFailedStore(store)

	require.NoError(t, m.Dispatch(context.Background(), &failJob{}))
	raw, err := d.Pop(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Process(context.Background(), raw))

	failed := m.FailedJobs()
	require.Len(t, failed, 1)
	assert.Equal(t, "fail", failed[0].Type)
	assert.Equal(t, 2, failed[0].Attempts)
	assert.Equal(t, "always fails", failed[0].Error)
	require.Len(t, store.jobs, 1)
	assert.Equal(t, failed[0].ID, store.jobs[0].ID)
}

func TestProcessUnknownType(t *testing.T) {
	m, _ := newManager()
	err := m.Process(context.Background(), []byte(`{"id":"1","type":"nope","payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnknownJob)

	assert.Error(t, m.Process(context.Background(), []byte(`not json`)))
}

func TestMemoryDriverPushRespectsContext(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Push(ctx, []byte("b")), context.DeadlineExceeded)
}
