package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexadomus/internal/logger"
	"nexadomus/internal/models"
)

func TestMonitoringService_GetStateBeforeAnyPoll(t *testing.T) {
	t.Parallel()

	rec, store, _ := newTestReconciler(t, models.ModeRemoteOnly, sampleStatus)
	timer := NewTimerEngine(store, (&timerHarness{}).isOn, (&timerHarness{}).off, logger.Nop())
	t.Cleanup(timer.Close)
	svc := NewMonitoringService(rec, timer, store, store, store)

	snap, err := svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap.Status)
	assert.Empty(t, snap.Devices)
	assert.Equal(t, models.ConnectivityMode(""), snap.Mode)
	assert.False(t, snap.Timer.Active)
	assert.NotEmpty(t, snap.ScheduleSummary)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestMonitoringService_GetStateAfterPoll(t *testing.T) {
	t.Parallel()

	rec, store, _ := newTestReconciler(t, models.ModeLocalDirect, sampleStatus)
	h := &timerHarness{on: true}
	timer := NewTimerEngine(store, h.isOn, h.off, logger.Nop())
	t.Cleanup(timer.Close)
	require.NoError(t, store.SaveMode(context.Background(), models.ModeLocalDirect))

	_, err := rec.Poll(context.Background())
	require.NoError(t, err)
	_, err = timer.Start(context.Background(), 300)
	require.NoError(t, err)

	snap, err := NewMonitoringService(rec, timer, store, store, store).GetState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Status)
	assert.Equal(t, "local_only", snap.OperatingMode)
	assert.Equal(t, models.ModeLocalDirect, snap.Mode)
	assert.Len(t, snap.Devices, 4)
	assert.True(t, snap.Timer.Active)
	assert.Equal(t, 60, snap.Schedule.DurationMinutes)
}
