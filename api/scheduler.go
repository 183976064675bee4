/*
scheduler.go - Automated rollover sweep scheduler

PURPOSE:
  Periodically runs a rollover sweep so weeks whose end date has passed
  get their surplus carried forward without waiting for the next write.
  A week that becomes eligible purely by the calendar advancing has no
  transaction to trigger it; the scheduler covers that gap.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Each tick is one SweepRollovers call; the sweep itself is idempotent
  - A truncated sweep is logged and retried on the next tick

USAGE:
  scheduler := NewSweepScheduler(planner, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - budget/rollover.go: Sweep semantics
  - cmd/server/main.go: Lifecycle wiring
*/
package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/budget"
)

// SweepScheduler runs rollover sweeps on a timer.
type SweepScheduler struct {
	Planner       *budget.Planner
	Log           zerolog.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweepScheduler creates a scheduler with a one hour check interval.
func NewSweepScheduler(planner *budget.Planner, log zerolog.Logger) *SweepScheduler {
	return &SweepScheduler{
		Planner:       planner,
		Log:           log,
		CheckInterval: time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (ss *SweepScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)
	go ss.run()

	ss.Log.Info().Dur("interval", ss.CheckInterval).Msg("sweep scheduler started")
}

// Stop stops the scheduler and waits for an in-flight sweep to finish.
func (ss *SweepScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		ss.Log.Info().Msg("sweep scheduler stopped")
	}
}

// RunNow triggers an immediate sweep outside the timer.
func (ss *SweepScheduler) RunNow() {
	ss.sweep()
}

func (ss *SweepScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.sweep()

	for {
		select {
		case <-ss.ticker.C:
			ss.sweep()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SweepScheduler) sweep() {
	err := ss.Planner.SweepRollovers(context.Background())
	switch {
	case err == nil:
	case errors.Is(err, budget.ErrIncompleteSweep):
		var incomplete *budget.IncompleteSweepError
		errors.As(err, &incomplete)
		ss.Log.Warn().Ints("pending_weeks", incomplete.Pending).Msg("sweep truncated, retrying next tick")
	default:
		ss.Log.Error().Err(err).Msg("scheduled sweep failed")
	}
}
