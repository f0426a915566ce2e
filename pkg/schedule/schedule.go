// Package schedule runs recurring tasks on a Scheduler instance.
//
//	s := schedule.New()
//	s.Every(time.Second).Name("pricing").Immediately().Run(poll)
//	s.Cron("0 3 * * *").Name("prune").WithoutOverlapping().Run(prune)
//	s.Start(ctx)
//	defer s.Wait()
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// Task is one run of a scheduled job. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context)

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	immediate bool
	noOverlap bool
	task      Task

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

// Scheduler owns a set of entries. The zero value is not usable; call New.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	started bool
	wg      sync.WaitGroup
}

func New() *Scheduler { return &Scheduler{} }

// Schedule is the fluent builder returned by Every and Cron.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every runs the task once per d, measured from Start.
func (s *Scheduler) Every(d time.Duration) *Schedule {
	if d <= 0 {
		d = time.Second
	}
	return &Schedule{s: s, e: &entry{interval: d}}
}

// Cron runs the task when the 5-field expression (min hour dom mon dow)
// matches the wall clock minute.
func (s *Scheduler) Cron(expr string) *Schedule {
	return &Schedule{s: s, e: &entry{cronExpr: expr}}
}

func (b *Schedule) Name(id string) *Schedule {
	b.e.id = id
	return b
}

// Immediately also runs the task once at Start, before the first interval.
func (b *Schedule) Immediately() *Schedule {
	b.e.immediate = true
	return b
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (b *Schedule) WithoutOverlapping() *Schedule {
	b.e.noOverlap = true
	return b
}

// Run registers the entry. Entries added after Start are ignored.
func (b *Schedule) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	if b.s.started {
		logger.Warn("schedule: entry registered after start", "id", b.e.id)
		return
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start launches one loop per interval entry and a shared minute loop for
// cron entries. All loops exit when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	entries := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	var crons []*entry
	for _, e := range entries {
		if e.cronExpr != "" {
			crons = append(crons, e)
			continue
		}
		s.wg.Add(1)
		go s.every(ctx, e)
	}
	if len(crons) > 0 {
		s.wg.Add(1)
		go s.cron(ctx, crons)
	}
	logger.Debug("schedule: started", "entries", len(entries))
}

// Wait blocks until every loop and in-flight task has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) every(ctx context.Context, e *entry) {
	defer s.wg.Done()

	if e.immediate {
		s.dispatch(ctx, e)
	}
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatch(ctx, e)
		}
	}
}

func (s *Scheduler) cron(ctx context.Context, crons []*entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			minute := now.Truncate(time.Minute)
			for _, e := range crons {
				e.mu.Lock()
				due := !e.lastRun.Equal(minute) && matchCron(e.cronExpr, now)
				e.mu.Unlock()
				if due {
					s.dispatch(ctx, e)
				}
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Debug("schedule: skipping overlapping run", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = time.Now().Truncate(time.Minute)
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()
		e.task(ctx)
	}()
}

// List describes the registered entries, for the CLI.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = "every " + e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}

// Fields: * | n | */step | a-b | comma list of those.
func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	vals := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, vals[i]) {
			return false
		}
	}
	return true
}

func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		if matchPart(part, val) {
			return true
		}
	}
	return false
}

func matchPart(part string, val int) bool {
	switch {
	case part == "*":
		return true
	case strings.HasPrefix(part, "*/"):
		var step int
		fmt.Sscanf(part[2:], "%d", &step)
		return step > 0 && val%step == 0
	case strings.Contains(part, "-"):
		var lo, hi int
		if n, _ := fmt.Sscanf(part, "%d-%d", &lo, &hi); n != 2 {
			return false
		}
		return val >= lo && val <= hi
	default:
		var n int
		if c, _ := fmt.Sscanf(part, "%d", &n); c != 1 {
			return false
		}
		return n == val
	}
}
