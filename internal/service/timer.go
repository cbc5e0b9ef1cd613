package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/repository"
)

// TimerPhase is the lifecycle position of the sprinkler countdown.
type TimerPhase string

const (
	PhaseIdle               TimerPhase = "idle"
	PhaseActive             TimerPhase = "active"
	PhaseExpiredReconciling TimerPhase = "expired_reconciling"
	PhaseCancelled          TimerPhase = "cancelled"
)

const defaultTimerTick = time.Second

var ErrInvalidDuration = errors.New("timer duration must be positive")

// TimerEngine owns the single sprinkler countdown. The absolute end time is
// persisted so a restart can resume or discard it.
//
// On expiry it asks isOn whether the device is still running. A definite
// "off" skips the off command; a failed check still sends it.
type TimerEngine struct {
	store repository.TimerStore
	isOn  func(ctx context.Context) (bool, error)
	off   func(ctx context.Context) (models.CommandOutcome, error)
	log   *logger.Logger
	now   func() time.Time
	tick  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	phase TimerPhase
	end   time.Time
	armed time.Time
	gen   uint64
	stop  chan struct{}
}

func NewTimerEngine(
	store repository.TimerStore,
	isOn func(ctx context.Context) (bool, error),
	off func(ctx context.Context) (models.CommandOutcome, error),
	log *logger.Logger,
) *TimerEngine {
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerEngine{
		store:  store,
		isOn:   isOn,
		off:    off,
		log:    log.OrNop(),
		now:    time.Now,
		tick:   defaultTimerTick,
		ctx:    ctx,
		cancel: cancel,
		phase:  PhaseIdle,
	}
}

// Start arms a countdown of seconds, superseding any active one.
func (e *TimerEngine) Start(ctx context.Context, seconds int) (models.TimerState, error) {
	if seconds <= 0 {
		return models.TimerState{}, ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	// a failed save leaves the previous countdown running and persisted
	end := e.now().Add(time.Duration(seconds) * time.Second)
	if err := e.store.SaveTimer(ctx, models.TimerState{Active: true, EndTimestamp: end}); err != nil {
		return models.TimerState{}, err
	}
	e.disarmLocked()
	e.armLocked(end)
	e.log.Infow("timer_started", "seconds", seconds, "end", end.UTC())
	return e.stateLocked(), nil
}

// Cancel stops the countdown and clears persisted state. An off command
// already in flight is not aborted.
func (e *TimerEngine) Cancel(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	wasActive := e.phase == PhaseActive
	e.disarmLocked()
	e.phase = PhaseCancelled
	err := e.store.ClearTimer(ctx)
	e.phase = PhaseIdle
	if wasActive {
		e.log.Infow("timer_cancelled")
	}
	return err
}

// Restore resumes a persisted countdown after a restart. An end time already
// in the past is discarded without sending off.
func (e *TimerEngine) Restore(ctx context.Context) (models.TimerState, error) {
	persisted, err := e.store.LoadTimer(ctx)
	if err != nil {
		return models.TimerState{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !persisted.Active {
		return e.stateLocked(), nil
	}
	if !persisted.EndTimestamp.After(e.now()) {
		e.log.Infow("timer_stale_discarded", "end", persisted.EndTimestamp)
		return models.TimerState{}, e.store.ClearTimer(ctx)
	}
	e.disarmLocked()
	e.armLocked(persisted.EndTimestamp)
	e.log.Infow("timer_restored", "end", persisted.EndTimestamp, "remaining_s", e.stateLocked().RemainingSeconds)
	return e.stateLocked(), nil
}

// State reports the current countdown.
func (e *TimerEngine) State() models.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Phase reports the current lifecycle phase.
func (e *TimerEngine) Phase() TimerPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// ArmedAt reports when the current countdown was started or restored.
func (e *TimerEngine) ArmedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

// Close stops ticking and waits for a running expiry to return.
func (e *TimerEngine) Close() {
	e.mu.Lock()
	e.disarmLocked()
	e.mu.Unlock()
	e.cancel()
	e.wg.Wait()
}

func (e *TimerEngine) stateLocked() models.TimerState {
	if e.phase != PhaseActive && e.phase != PhaseExpiredReconciling {
		return models.TimerState{}
	}
	remaining := int(math.Ceil(e.end.Sub(e.now()).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	return models.TimerState{Active: true, EndTimestamp: e.end, RemainingSeconds: remaining}
}

func (e *TimerEngine) armLocked(end time.Time) {
	e.gen++
	e.phase = PhaseActive
	e.end = end
	e.armed = e.now()
	e.stop = make(chan struct{})
	e.wg.Add(1)
	go e.run(e.gen, e.stop)
}

// disarmLocked invalidates the current generation and stops its ticker.
func (e *TimerEngine) disarmLocked() {
	e.gen++
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	e.phase = PhaseIdle
	e.end = time.Time{}
	e.armed = time.Time{}
}

func (e *TimerEngine) run(gen uint64, stop <-chan struct{}) {
	defer e.wg.Done()
	t := time.NewTicker(e.tick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-e.ctx.Done():
			return
		case <-t.C:
			e.mu.Lock()
			if e.gen != gen {
				e.mu.Unlock()
				return
			}
			if e.now().Before(e.end) {
				e.mu.Unlock()
				continue
			}
			e.phase = PhaseExpiredReconciling
			e.stop = nil
			e.mu.Unlock()

			e.expire(gen)
			return
		}
	}
}

func (e *TimerEngine) expire(gen uint64) {
	ctx := e.ctx
	on, err := e.isOn(ctx)
	switch {
	case err != nil:
		e.log.Warnw("timer_expired_status_unknown", "err", err)
		e.sendOff(ctx)
	case !on:
		e.log.Infow("timer_expired_already_off")
	default:
		e.sendOff(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		// superseded by Start or Cancel while reconciling
		return
	}
	if err := e.store.ClearTimer(ctx); err != nil {
		e.log.Errorw("timer_clear_failed", "err", err)
	}
	e.phase = PhaseIdle
	e.end = time.Time{}
	e.armed = time.Time{}
}

func (e *TimerEngine) sendOff(ctx context.Context) {
	out, err := e.off(ctx)
	if err != nil {
		e.log.Errorw("timer_off_failed", "err", err, "mode", out.Mode, "path", out.PathUsed)
		return
	}
	e.log.Infow("timer_expired", "path", out.PathUsed, "classification", out.Classification())
}
