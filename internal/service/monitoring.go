package service

import (
	"context"
	"time"

	"nexadomus/internal/models"
	"nexadomus/internal/repository"
	"nexadomus/internal/schedule"
)

type MonitoringService struct {
	reconciler *StatusReconciler
	timer      *TimerEngine
	states     repository.StateCache
	schedules  repository.ScheduleStore
	modes      repository.ModeStore
}

func NewMonitoringService(reconciler *StatusReconciler, timer *TimerEngine, states repository.StateCache, schedules repository.ScheduleStore, modes repository.ModeStore) *MonitoringService {
	return &MonitoringService{reconciler: reconciler, timer: timer, states: states, schedules: schedules, modes: modes}
}

// GetState assembles the latest snapshot from memory and the stores.
// It never touches the network.
func (s *MonitoringService) GetState(ctx context.Context) (models.StateSnapshot, error) {
	devices, err := s.states.LoadAll(ctx)
	if err != nil {
		return models.StateSnapshot{}, err
	}
	sched, err := s.schedules.LoadSchedule(ctx)
	if err != nil {
		return models.StateSnapshot{}, err
	}
	mode, err := s.modes.LoadMode(ctx)
	if err != nil {
		return models.StateSnapshot{}, err
	}

	snap := models.StateSnapshot{
		Mode:            mode,
		Devices:         devices,
		Timer:           s.timer.State(),
		Schedule:        sched,
		ScheduleSummary: schedule.Summary(sched),
		GeneratedAt:     time.Now().UTC(),
	}
	if st, ok := s.reconciler.Latest(); ok {
		snap.Status = &st
		snap.OperatingMode = st.OperatingMode
	}
	return snap, nil
}
