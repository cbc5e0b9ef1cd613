package service

import (
	"context"
	"time"

	"nexadomus/internal/logger"
	"nexadomus/internal/models"
)

// StatusService polls the controller and feeds the sprinkler countdown.
type StatusService struct {
	reconciler *StatusReconciler
	sprinklers *SprinklerService
	log        *logger.Logger
}

func NewStatusService(reconciler *StatusReconciler, sprinklers *SprinklerService, log *logger.Logger) *StatusService {
	return &StatusService{reconciler: reconciler, sprinklers: sprinklers, log: log.OrNop()}
}

// Refresh polls once and syncs the countdown on success.
func (s *StatusService) Refresh(ctx context.Context) (models.DeviceStatus, error) {
	st, err := s.reconciler.Poll(ctx)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	s.sprinklers.SyncTimer(ctx, st)
	return st, nil
}

func (s *StatusService) ListDevices(ctx context.Context) ([]models.AttachedDevice, error) {
	return s.reconciler.ListDevices(ctx)
}

// Run polls at the given interval until ctx is canceled. Failures are logged
// at debug level since NoConnectivity is expected whenever not local.
func (s *StatusService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.log.Debugw("status_poll_failed", "err", err, "kind", models.KindOf(err))
			}
		}
	}
}
