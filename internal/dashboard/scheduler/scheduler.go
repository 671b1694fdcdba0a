// Package scheduler runs independently-timed polling loops, each bound
// to a fetch function, an interval, and an activation predicate.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Job is one polling loop. When Active returns false, ticks are skipped
// entirely: no fetch, no state change. A nil Active means always active.
type Job struct {
	Name     string
	Interval time.Duration
	Active   func() bool
	Run      func(ctx context.Context)
}

// Scheduler owns one goroutine per job. Jobs are fully independent: a
// slow or failing job never delays another's schedule. Each fire runs
// on its own goroutine, so a fetch outliving its interval overlaps the
// next one; the downstream store is last-applied-wins.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []Job
	triggers map[string]chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	started  bool
}

func New() *Scheduler {
	return &Scheduler{
		triggers: make(map[string]chan struct{}),
	}
}

// Add registers a job. Must be called before Start.
func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	s.triggers[job.Name] = make(chan struct{}, 1)
}

// Start launches every registered job's loop. The first fire happens
// immediately, not after waiting one interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job, s.triggers[job.Name])
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job, trigger <-chan struct{}) {
	defer s.wg.Done()

	active := job.Active
	if active == nil {
		active = func() bool { return true }
	}
	fire := func() {
		go job.Run(ctx)
	}

	// Run immediately once at startup
	if active() {
		fire()
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if active() {
				fire()
			}
		case <-trigger:
			if active() {
				fire()
			}
		}
	}
}

// Trigger fires the named job out of band, without resetting its cadence.
// No-op for unknown names or when the job is inactive.
func (s *Scheduler) Trigger(name string) {
	s.mu.Lock()
	ch, ok := s.triggers[name]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default: // a trigger is already pending
	}
}

// Stop cancels all loops. In-flight fetches are not forcibly aborted;
// their eventual completion must be ignored by the consumer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
