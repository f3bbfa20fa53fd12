// Package scheduler drives the commitment pipeline on a fixed wall-clock
// cadence. It owns the start/stop lifecycle and contains every tick-level
// failure: a broken tick is logged and the next one proceeds independently.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"pickup-commit-service/internal/services"
)

type Config struct {
	Enabled      bool
	Interval     time.Duration
	StartupDelay time.Duration
	BatchLimit   int
}

// Scheduler runs the commitment pipeline periodically. All state lives on the
// instance, so independent schedulers can coexist (one per test, typically).
type Scheduler struct {
	cfg  Config
	deps services.PipelineDeps
}

func New(cfg Config, deps services.PipelineDeps) *Scheduler {
	return &Scheduler{cfg: cfg, deps: deps}
}

// Handle controls a started scheduler. Stop prevents future ticks; a tick
// already in flight is allowed to finish but is not awaited.
type Handle struct {
	stop chan struct{}
	once sync.Once
}

func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

// Start begins periodic execution and returns immediately with a Handle.
//
// One immediate pass runs after a short startup delay so a freshly booted
// process does not wait a full interval, then passes repeat on the configured
// cadence. When the scheduler is disabled the returned handle is valid but
// inert.
func (s *Scheduler) Start() *Handle {
	h := &Handle{stop: make(chan struct{})}

	if !s.cfg.Enabled {
		log.Printf("scheduler: disabled, not starting")
		return h
	}

	go s.run(h)

	return h
}

func (s *Scheduler) run(h *Handle) {
	startup := time.NewTimer(s.cfg.StartupDelay)
	defer startup.Stop()

	select {
	case <-h.stop:
		return
	case <-startup.C:
	}

	s.runPass()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			s.runPass()
		}
	}
}

// runPass executes one full pass, containing both errors and panics so a
// systemic failure (store unreachable, provider bug) never kills the process
// or the cadence.
func (s *Scheduler) runPass() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: pass panicked: %v", r)
		}
	}()

	stats, err := services.RunCommitPass(context.Background(), s.deps, s.cfg.BatchLimit)
	if err != nil {
		log.Printf("scheduler: pass failed, next tick will retry: %v", err)
		return
	}

	if stats.Candidates > 0 {
		log.Printf(
			"scheduler: pass done candidates=%d frozen=%d not_eligible=%d unavailable=%d already_frozen=%d failed=%d",
			stats.Candidates, stats.Frozen, stats.NotEligible, stats.Unavailable, stats.AlreadyFrozen, stats.Failed,
		)
	}
}
