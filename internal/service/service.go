package service

import (
	"context"
	"time"

	"nexadomus/internal/command"
	"nexadomus/internal/connectivity"
	"nexadomus/internal/logger"
	"nexadomus/internal/models"
	"nexadomus/internal/repository"
)

// Devices routes arbitrary device commands.
type Devices interface {
	Control(ctx context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error)
}

// Sprinklers exposes timed runs, the countdown and the schedule.
type Sprinklers interface {
	TurnOn(ctx context.Context, d *models.ManualDuration) (models.CommandOutcome, error)
	TurnOff(ctx context.Context) (models.CommandOutcome, error)
	Timer() models.TimerState
	GetSchedule(ctx context.Context) (models.ScheduleEntry, error)
	SaveSchedule(ctx context.Context, e models.ScheduleEntry) (models.ScheduleEntry, models.CommandOutcome, error)
	GetManualDuration(ctx context.Context) (models.ManualDuration, error)
	SaveManualDuration(ctx context.Context, d models.ManualDuration) (models.ManualDuration, error)
}

// Status polls the controller on demand.
type Status interface {
	Refresh(ctx context.Context) (models.DeviceStatus, error)
	ListDevices(ctx context.Context) ([]models.AttachedDevice, error)
}

// Monitoring exposes the read-only combined state.
type Monitoring interface {
	GetState(ctx context.Context) (models.StateSnapshot, error)
}

// EventLog exposes the command history with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CommandEvent, error)
}

// Poller runs the background status loop.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Devices
	Sprinklers
	Status
	Monitoring
	EventLog
	Poller

	router *CommandRouter
	timer  *TimerEngine
}

// Deps are the leaf collaborators the services are built from.
type Deps struct {
	Repos     *repository.Repository
	Probe     connectivity.Prober
	Direct    DirectSender
	Relay     RelaySender
	Log       *logger.Logger
	QueueSize int
}

// NewService wires the repository layer and transports into concrete services.
func NewService(d Deps) *Service {
	log := d.Log.OrNop()
	router := NewCommandRouter(d.Probe, d.Direct, d.Relay, log.Named("router"), d.QueueSize)
	reconciler := NewStatusReconciler(router, d.Repos.StateCache, d.Repos.Schedule, log.Named("status"))
	var devices *DeviceService
	timer := NewTimerEngine(d.Repos.Timer, sprinklerIsOn(reconciler), sprinklerOff(&devices), log.Named("timer"))
	devices = NewDeviceService(router, d.Repos.StateCache, d.Repos.Mode, d.Repos.EventRepo, timer, log.Named("devices"))
	sprinklers := NewSprinklerService(devices, timer, d.Repos.Schedule, log.Named("sprinklers"))
	status := NewStatusService(reconciler, sprinklers, log.Named("status"))

	return &Service{
		Devices:    devices,
		Sprinklers: sprinklers,
		Status:     status,
		Monitoring: NewMonitoringService(reconciler, timer, d.Repos.StateCache, d.Repos.Schedule, d.Repos.Mode),
		EventLog:   NewEventLogService(d.Repos.EventRepo),
		Poller:     status,
		router:     router,
		timer:      timer,
	}
}

// Restore resumes a countdown persisted by a previous run.
func (s *Service) Restore(ctx context.Context) (models.TimerState, error) {
	return s.timer.Restore(ctx)
}

// Close stops the countdown and the router worker.
func (s *Service) Close() {
	if s.timer != nil {
		s.timer.Close()
	}
	if s.router != nil {
		s.router.Close()
	}
}

func sprinklerIsOn(r *StatusReconciler) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		st, err := r.Poll(ctx)
		if err != nil {
			return false, err
		}
		return st.SprinklerOn, nil
	}
}

// sprinklerOff resolves the device service lazily; it and the timer refer to each other.
func sprinklerOff(devices **DeviceService) func(ctx context.Context) (models.CommandOutcome, error) {
	return func(ctx context.Context) (models.CommandOutcome, error) {
		return (*devices).Control(ctx, command.SprinklersOff())
	}
}
