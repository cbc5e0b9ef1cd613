package service

import (
	"context"
	"fmt"

	"nexadomus/internal/command"
	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/repository"
	"nexadomus/internal/schedule"
)

// controllerTimerDrift is how far the local countdown may lag the controller's
// before a status poll re-arms it.
const controllerTimerDrift = 2

// Controller routes a command with bookkeeping.
type Controller interface {
	Control(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error)
}

// SprinklerService covers manual runs, the countdown and the weekly schedule.
type SprinklerService struct {
	devices   Controller
	timer     *TimerEngine
	schedules repository.ScheduleStore
	log       *logger.Logger
}

func NewSprinklerService(devices Controller, timer *TimerEngine, schedules repository.ScheduleStore, log *logger.Logger) *SprinklerService {
	return &SprinklerService{devices: devices, timer: timer, schedules: schedules, log: log.OrNop()}
}

// TurnOn starts a timed run. A nil duration uses the stored manual duration;
// a zero total runs until turned off. The device path arms the countdown.
func (s *SprinklerService) TurnOn(ctx context.Context, d *models.ManualDuration) (models.CommandOutcome, error) {
	var dur models.ManualDuration
	if d == nil {
		stored, err := s.schedules.LoadManual(ctx)
		if err != nil {
			return models.CommandOutcome{}, fmt.Errorf("load manual duration: %w", err)
		}
		dur = stored
	} else {
		dur = schedule.ClampManual(*d)
	}
	if err := schedule.ValidateManual(dur); err != nil {
		return models.CommandOutcome{}, err
	}

	return s.devices.Control(ctx, command.SprinklersOn(dur.TotalSeconds()))
}

// TurnOff stops the sprinklers. The device path cancels the countdown on success.
func (s *SprinklerService) TurnOff(ctx context.Context) (models.CommandOutcome, error) {
	return s.devices.Control(ctx, command.SprinklersOff())
}

func (s *SprinklerService) Timer() models.TimerState {
	return s.timer.State()
}

func (s *SprinklerService) GetSchedule(ctx context.Context) (models.ScheduleEntry, error) {
	return s.schedules.LoadSchedule(ctx)
}

// SaveSchedule clamps, validates and persists e, then pushes it to the
// controller. A failed push is reported in the outcome only; the schedule
// stays saved.
func (s *SprinklerService) SaveSchedule(ctx context.Context, e models.ScheduleEntry) (models.ScheduleEntry, models.CommandOutcome, error) {
	e = schedule.Clamp(e)
	if err := schedule.Validate(e); err != nil {
		return models.ScheduleEntry{}, models.CommandOutcome{}, err
	}
	if err := s.schedules.SaveSchedule(ctx, e); err != nil {
		return models.ScheduleEntry{}, models.CommandOutcome{}, fmt.Errorf("save schedule: %w", err)
	}
	out, err := s.devices.Control(ctx, command.SprinklerSchedule(e))
	if err != nil {
		s.log.Warnw("schedule_push_failed", "err", err, "mode", out.Mode)
	}
	return e, out, nil
}

func (s *SprinklerService) GetManualDuration(ctx context.Context) (models.ManualDuration, error) {
	return s.schedules.LoadManual(ctx)
}

// SaveManualDuration clamps and persists d.
func (s *SprinklerService) SaveManualDuration(ctx context.Context, d models.ManualDuration) (models.ManualDuration, error) {
	d = schedule.ClampManual(d)
	if err := schedule.ValidateManual(d); err != nil {
		return models.ManualDuration{}, err
	}
	if err := s.schedules.SaveManual(ctx, d); err != nil {
		return models.ManualDuration{}, fmt.Errorf("save manual duration: %w", err)
	}
	return d, nil
}

// SyncTimer aligns the local countdown with a status snapshot: a running
// controller timer re-arms it, a stopped sprinkler cancels it. Snapshots
// fetched before the countdown was armed are ignored.
func (s *SprinklerService) SyncTimer(ctx context.Context, st models.DeviceStatus) {
	local := s.timer.State()
	if local.Active && s.timer.ArmedAt().After(st.FetchedAt) {
		// snapshot predates the run that armed the countdown
		return
	}
	switch {
	case st.SprinklerOn && st.Timer.Active && st.Timer.RemainingSeconds > 0:
		if local.Active && absInt(local.RemainingSeconds-st.Timer.RemainingSeconds) <= controllerTimerDrift {
			return
		}
		if _, err := s.timer.Start(ctx, st.Timer.RemainingSeconds); err != nil {
			s.log.Errorw("timer_sync_failed", "err", err)
			return
		}
		s.log.Infow("timer_synced", "remaining_s", st.Timer.RemainingSeconds)
	case !st.SprinklerOn && local.Active:
		if err := s.timer.Cancel(ctx); err != nil {
			s.log.Errorw("timer_cancel_failed", "err", err)
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
