package service

import (
	"context"
	"sync"
	"time"

	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/repository"
	"nexadomus/internal/schedule"
)

// Controller read endpoints.
const (
	statusEndpoint  = "/status"
	devicesEndpoint = "/devices"
)

// Fetcher reads a controller endpoint, failing with NoConnectivity unless local.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) (string, models.ConnectivityMode, error)
}

// StatusReconciler polls /status and writes the result through to the state
// cache and the schedule store. Poll failures leave both untouched.
type StatusReconciler struct {
	fetcher   Fetcher
	states    repository.StateCache
	schedules repository.ScheduleStore
	log       *logger.Logger
	now       func() time.Time

	mu     sync.RWMutex
	latest *models.DeviceStatus
}

func NewStatusReconciler(fetcher Fetcher, states repository.StateCache, schedules repository.ScheduleStore, log *logger.Logger) *StatusReconciler {
	return &StatusReconciler{
		fetcher:   fetcher,
		states:    states,
		schedules: schedules,
		log:       log.OrNop(),
		now:       time.Now,
	}
}

// Poll fetches and decodes one status snapshot.
func (r *StatusReconciler) Poll(ctx context.Context) (models.DeviceStatus, error) {
	raw, _, err := r.fetcher.Fetch(ctx, statusEndpoint)
	if err != nil {
		return models.DeviceStatus{}, err
	}

	fallback, err := r.schedules.LoadSchedule(ctx)
	if err != nil {
		r.log.Warnw("schedule_load_failed", "err", err)
		fallback = schedule.Default()
	}
	st, hasSchedule, err := decodeStatus(raw, fallback, r.now())
	if err != nil {
		r.log.Warnw("status_decode_failed", "err", err)
		return models.DeviceStatus{}, err
	}

	r.mu.Lock()
	r.latest = &st
	r.mu.Unlock()

	r.writeThrough(ctx, st, hasSchedule)
	return st, nil
}

func (r *StatusReconciler) writeThrough(ctx context.Context, st models.DeviceStatus, hasSchedule bool) {
	if hasSchedule {
		if err := r.schedules.SaveSchedule(ctx, st.Schedule); err != nil {
			r.log.Errorw("schedule_save_failed", "err", err)
		}
	}
	for _, ds := range statesFromStatus(st) {
		if err := r.states.Save(ctx, ds); err != nil {
			r.log.Errorw("state_save_failed", "err", err, "kind", ds.Kind)
		}
	}
}

func statesFromStatus(st models.DeviceStatus) []models.DeviceState {
	mk := func(kind models.DeviceKind, state string, level int) models.DeviceState {
		return models.DeviceState{
			Kind:      kind,
			State:     state,
			Level:     level,
			Confirmed: true,
			Source:    models.SourceStatus,
			UpdatedAt: st.FetchedAt,
		}
	}
	lightsState := models.StateOff
	if st.LightsBrightness > 0 {
		lightsState = models.StateOn
	}
	out := []models.DeviceState{
		mk(models.KindSprinklers, onOff(st.SprinklerOn), 0),
		mk(models.KindGarage, openClosed(st.GarageOpen), 0),
		mk(models.KindLights, lightsState, st.LightsBrightness),
	}
	if st.ClimateKnown {
		out = append(out, mk(models.KindClimate, onOff(st.ClimateOn), 0))
	}
	return out
}

// Latest returns the most recent successfully decoded snapshot.
func (r *StatusReconciler) Latest() (models.DeviceStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return models.DeviceStatus{}, false
	}
	return *r.latest, true
}

// LastKnown returns the cached per-device state used when polling is impossible.
func (r *StatusReconciler) LastKnown(ctx context.Context) ([]models.DeviceState, error) {
	return r.states.LoadAll(ctx)
}

// ListDevices enumerates devices attached to the controller. LocalDirect only.
func (r *StatusReconciler) ListDevices(ctx context.Context) ([]models.AttachedDevice, error) {
	raw, _, err := r.fetcher.Fetch(ctx, devicesEndpoint)
	if err != nil {
		return nil, err
	}
	return decodeDevices(raw)
}

func onOff(on bool) string {
	if on {
		return models.StateOn
	}
	return models.StateOff
}

func openClosed(open bool) string {
	if open {
		return models.StateOpen
	}
	return models.StateClosed
}
