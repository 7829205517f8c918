// Package sweep drives the probing pipeline: on a fixed period it lists all
// known checks and dispatches each one, independently and concurrently,
// through validation, the probe executor, and the state transition.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"upcheck/internal/alert"
	"upcheck/internal/model"
	"upcheck/internal/probe"
	"upcheck/internal/storage"
)

// Prober executes one probe attempt. Satisfied by *probe.Executor.
type Prober interface {
	Execute(ctx context.Context, chk model.Check) probe.Outcome
}

// Sweeper is the periodic scheduler. Cycle boundaries are not synchronized
// with in-flight probes from the previous cycle; a slow endpoint can still be
// mid-probe when the next cycle dispatches it again. That is a known
// limitation, not something the scheduler compensates for.
type Sweeper struct {
	store    storage.Store
	prober   Prober
	notifier alert.Notifier
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time

	stop  chan struct{}
	loop  sync.WaitGroup
	tasks sync.WaitGroup
}

// New creates a sweeper. now may be nil, in which case time.Now is used.
func New(store storage.Store, prober Prober, notifier alert.Notifier, interval time.Duration, log *slog.Logger, now func() time.Time) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		store:    store,
		prober:   prober,
		notifier: notifier,
		interval: interval,
		log:      log,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Start runs an immediate sweep and then one per interval until Stop.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("starting sweep scheduler", "interval", s.interval)
	s.loop.Add(1)
	go func() {
		defer s.loop.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunCycle(ctx)
		for {
			select {
			case <-ticker.C:
				s.RunCycle(ctx)
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the periodic loop and waits for in-flight per-check tasks.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.loop.Wait()
	s.tasks.Wait()
	s.log.Info("sweep scheduler stopped")
}

// RunCycle dispatches one task per known check. Failures are isolated per
// check; a bad record or a failed probe never aborts the cycle for others.
func (s *Sweeper) RunCycle(ctx context.Context) {
	ids, err := s.store.List(ctx, storage.Checks)
	if err != nil {
		if errors.Is(err, storage.ErrNoCollection) || errors.Is(err, storage.ErrEmptyCollection) {
			s.log.Debug("no checks to process")
		} else {
			s.log.Error("listing checks failed", "err", err)
		}
		return
	}

	for _, id := range ids {
		id := id
		s.tasks.Add(1)
		go func() {
			defer s.tasks.Done()
			s.runCheck(ctx, id)
		}()
	}
}

func (s *Sweeper) runCheck(ctx context.Context, id string) {
	var chk model.Check
	if err := s.store.Read(ctx, storage.Checks, id, &chk); err != nil {
		s.log.Error("reading check failed", "check", id, "err", err)
		return
	}

	// Defensive second validation pass: a malformed persisted record is
	// skipped and logged, never probed and never fatal to the cycle.
	if err := chk.Validate(); err != nil {
		s.log.Warn("skipping malformed check record", "check", id, "err", err)
		return
	}

	outcome := s.prober.Execute(ctx, chk)
	s.ProcessOutcome(ctx, chk, outcome)
}

// ProcessOutcome applies the state transition for one resolved probe attempt:
// the check is up iff the attempt produced a response whose code is in the
// check's success set. An alert is warranted only for an observed transition —
// the very first observation of a check never alerts. The merged record is
// persisted before any alert; if persisting fails the transition is logged
// and dropped for this cycle.
func (s *Sweeper) ProcessOutcome(ctx context.Context, chk model.Check, outcome probe.Outcome) {
	state := model.StateDown
	if !outcome.Err && outcome.ResponseCode != 0 && chk.SuccessCode(outcome.ResponseCode) {
		state = model.StateUp
	}

	alertWarranted := chk.Observed() && chk.EffectiveState() != state

	chk.State = state
	chk.LastChecked = s.now().UnixMilli()
	if err := s.store.Update(ctx, storage.Checks, chk.ID, chk); err != nil {
		s.log.Error("saving check outcome failed", "check", chk.ID, "err", err)
		return
	}

	if !alertWarranted {
		s.log.Debug("check state unchanged", "check", chk.ID, "state", state)
		return
	}
	s.log.Info("check state changed", "check", chk.ID, "state", state)
	s.notifier.Notify(chk.UserPhone, alert.Message(chk))
}
