package service

import (
	"context"
	"strings"
	"time"

	"nexadomus/internal/command"
	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/repository"
)

// Executor routes a single command.
type Executor interface {
	Execute(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error)
}

// Countdown is the sprinkler timer kept in step with on and off commands.
type Countdown interface {
	Start(ctx context.Context, seconds int) (models.TimerState, error)
	Cancel(ctx context.Context) error
}

// DeviceService routes commands and records their effects: the state cache,
// the last observed connectivity mode and the command history.
type DeviceService struct {
	router    Executor
	states    repository.StateCache
	modes     repository.ModeStore
	eventRepo repository.EventRepo
	timer     Countdown
	log       *logger.Logger
	now       func() time.Time
}

// NewDeviceService builds the service. timer may be nil when nothing tracks
// sprinkler runs.
func NewDeviceService(router Executor, states repository.StateCache, modes repository.ModeStore, eventRepo repository.EventRepo, timer Countdown, log *logger.Logger) *DeviceService {
	return &DeviceService{
		router:    router,
		states:    states,
		modes:     modes,
		eventRepo: eventRepo,
		timer:     timer,
		log:       log.OrNop(),
		now:       time.Now,
	}
}

// Control executes cmd. Bookkeeping failures are logged and never change the outcome.
func (s *DeviceService) Control(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error) {
	out, err := s.router.Execute(ctx, cmd)
	now := s.now().UTC()

	if out.Mode != "" {
		if merr := s.modes.SaveMode(ctx, out.Mode); merr != nil {
			s.log.Errorw("mode_save_failed", "err", merr)
		}
	}

	if aerr := s.eventRepo.Append(ctx, models.CommandEvent{
		OccurredAt: now,
		Kind:       cmd.Kind,
		Action:     cmd.Action,
		Path:       out.PathUsed,
		Mode:       out.Mode,
		Succeeded:  out.Succeeded,
		ErrorKind:  out.ErrorKind,
		Detail:     out.Error,
	}); aerr != nil {
		s.log.Errorw("command_event_append_failed", "err", aerr)
	}

	if out.Succeeded {
		if ds, ok := s.stateAfter(ctx, cmd, out, now); ok {
			if serr := s.states.Save(ctx, ds); serr != nil {
				s.log.Errorw("state_save_failed", "err", serr, "kind", ds.Kind)
			}
		}
		if cmd.Kind == models.KindSprinklers {
			s.trackTimer(ctx, cmd)
		}
	}
	return out, err
}

// trackTimer arms the countdown for a timed on and clears it for an off or an
// untimed on, whichever path the command came in on.
func (s *DeviceService) trackTimer(ctx context.Context, cmd models.DeviceCommand) {
	if s.timer == nil {
		return
	}
	switch cmd.Action {
	case command.ActionOn:
		secs, timed, err := command.Duration(cmd)
		if err != nil {
			return
		}
		if timed {
			if _, terr := s.timer.Start(ctx, secs); terr != nil {
				s.log.Errorw("timer_start_failed", "err", terr, "seconds", secs)
			}
			return
		}
		if cerr := s.timer.Cancel(ctx); cerr != nil {
			s.log.Errorw("timer_cancel_failed", "err", cerr)
		}
	case command.ActionOff:
		if cerr := s.timer.Cancel(ctx); cerr != nil {
			s.log.Errorw("timer_cancel_failed", "err", cerr)
		}
	}
}

// stateAfter derives the cached state a successful command implies.
func (s *DeviceService) stateAfter(ctx context.Context, cmd models.DeviceCommand, out models.CommandOutcome, now time.Time) (models.DeviceState, bool) {
	ds := models.DeviceState{
		Kind:      cmd.Kind,
		Confirmed: out.Confirmed(),
		Source:    models.SourceDirect,
		UpdatedAt: now,
	}
	if out.PathUsed == models.PathRelay {
		ds.Source = models.SourceRelay
	}

	switch cmd.Kind {
	case models.KindGarage:
		switch cmd.Action {
		case command.ActionOpen:
			ds.State = models.StateOpen
		case command.ActionClose:
			ds.State = models.StateClosed
		case command.ActionToggle:
			if out.PathUsed == models.PathRelay {
				ds.State = models.StateOpen
				break
			}
			prev, ok, err := s.states.Load(ctx, models.KindGarage)
			if err != nil || !ok {
				return models.DeviceState{}, false
			}
			ds.State = models.StateOpen
			if prev.State == models.StateOpen {
				ds.State = models.StateClosed
			}
		default:
			return models.DeviceState{}, false
		}
	case models.KindLights:
		level, err := command.Brightness(cmd)
		if err != nil {
			return models.DeviceState{}, false
		}
		ds.Level = level
		ds.State = models.StateOff
		if level > 0 {
			ds.State = models.StateOn
		}
	case models.KindSprinklers, models.KindClimate:
		switch cmd.Action {
		case command.ActionOn:
			ds.State = models.StateOn
		case command.ActionOff:
			ds.State = models.StateOff
		default:
			return models.DeviceState{}, false
		}
	default:
		return models.DeviceState{}, false
	}
	return ds, true
}

// ParseCommand builds a DeviceCommand from loosely typed API input.
func ParseCommand(kind, action string, params map[string]string) (models.DeviceCommand, error) {
	k, err := models.ParseDeviceKind(kind)
	if err != nil {
		return models.DeviceCommand{}, models.NewCommandError(models.ErrKindUnknownCommand, err)
	}
	action = strings.TrimSpace(action)
	if k != models.KindCustom {
		action = strings.ToLower(action)
	}
	return models.NewDeviceCommand(k, action, params), nil
}
