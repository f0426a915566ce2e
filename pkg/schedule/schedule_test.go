package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryImmediately(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Every(time.Hour).Immediately().Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
	assert.Equal(t, int32(1), runs.Load())
}

func TestEveryTicks(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Every(10 * time.Millisecond).Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestNoRunsAfterStop(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Every(5 * time.Millisecond).Immediately().Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	s.Wait()

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestWithoutOverlapping(t *testing.T) {
	s := New()
	var runs atomic.Int32
	release := make(chan struct{})
	s.Every(5 * time.Millisecond).Immediately().WithoutOverlapping().Run(func(ctx context.Context) {
		runs.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	close(release)
	cancel()
	s.Wait()
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	s := New()
	var runs atomic.Int32
	s.Every(5 * time.Millisecond).Run(func(context.Context) {
		runs.Add(1)
		panic("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestList(t *testing.T) {
	s := New()
	s.Every(time.Second).Name("pricing").Run(func(context.Context) {})
	s.Cron("0 3 * * *").Run(func(context.Context) {})
	assert.Equal(t, []string{"pricing  [every 1s]", "task-2  [0 3 * * *]"}, s.List())
}

func TestMatchCron(t *testing.T) {
	at := time.Date(2026, 3, 9, 3, 15, 0, 0, time.UTC) // a Monday

	cases := map[string]bool{
		"* * * * *":       true,
		"15 3 * * *":      true,
		"*/5 * * * *":     true,
		"*/7 * * * *":     false,
		"10-20 3 * * 1":   true,
		"0 3 * * *":       false,
		"0,15,30 * * * *": true,
		"bad":             false,
		"x * * * *":       false,
	}
	for expr, want := range cases {
		assert.Equal(t, want, matchCron(expr, at), expr)
	}
}
