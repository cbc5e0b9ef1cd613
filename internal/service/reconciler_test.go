package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexadomus/internal/logger"
	"nexadomus/internal/models"
)

const sampleStatus = `{"sprinkler":180,"garage":0,"lights":85,"ac":false,"operating_mode":"local_only",
	"sprinkler_schedule":{"days":[true,false,false,false,false,false,true],"startHour":5,"startMinute":30,"startSecond":0,"duration":60,"durationSeconds":0}}`

func newTestReconciler(t *testing.T, mode models.ConnectivityMode, body string) (*StatusReconciler, *memStore, *fakeSender) {
	t.Helper()
	r, _, direct, _ := newTestRouter(t, mode)
	direct.responses = map[string]string{statusEndpoint: body}
	store := newMemStore()
	rec := NewStatusReconciler(r, store, store, logger.Nop())
	rec.now = newFakeClock().Now
	return rec, store, direct
}

func TestReconciler_PollWritesThrough(t *testing.T) {
	rec, store, _ := newTestReconciler(t, models.ModeLocalDirect, sampleStatus)

	st, err := rec.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, st.SprinklerOn)
	assert.Equal(t, "local_only", st.OperatingMode)

	sched, err := store.LoadSchedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleEntry{Days: [7]bool{true, false, false, false, false, false, true}, StartHour: 5, StartMinute: 30, DurationMinutes: 60}, sched)

	states, err := rec.LastKnown(context.Background())
	require.NoError(t, err)
	byKind := map[models.DeviceKind]models.DeviceState{}
	for _, s := range states {
		byKind[s.Kind] = s
		assert.True(t, s.Confirmed)
		assert.Equal(t, models.SourceStatus, s.Source)
	}
	assert.Equal(t, models.StateOn, byKind[models.KindSprinklers].State)
	assert.Equal(t, models.StateClosed, byKind[models.KindGarage].State)
	assert.Equal(t, 85, byKind[models.KindLights].Level)
	assert.Equal(t, models.StateOff, byKind[models.KindClimate].State)

	latest, ok := rec.Latest()
	require.True(t, ok)
	assert.Equal(t, st, latest)
}

func TestReconciler_RemoteOnlyPreservesLastKnown(t *testing.T) {
	rec, store, direct := newTestReconciler(t, models.ModeRemoteOnly, sampleStatus)
	cached := models.DeviceState{Kind: models.KindGarage, State: models.StateOpen, Confirmed: true, Source: models.SourceStatus}
	require.NoError(t, store.Save(context.Background(), cached))

	_, err := rec.Poll(context.Background())
	assert.ErrorIs(t, err, models.ErrNoConnectivity)
	assert.Empty(t, direct.sent())

	states, err := rec.LastKnown(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.DeviceState{cached}, states)
	_, ok := rec.Latest()
	assert.False(t, ok)
}

func TestReconciler_MalformedTouchesNothing(t *testing.T) {
	rec, store, _ := newTestReconciler(t, models.ModeLocalDirect, `{"sprinkler":"?"}`)

	_, err := rec.Poll(context.Background())
	assert.ErrorIs(t, err, models.ErrMalformedResponse)

	states, err := rec.LastKnown(context.Background())
	require.NoError(t, err)
	assert.Empty(t, states)
	assert.Nil(t, store.sched)
}

func TestReconciler_ListDevices(t *testing.T) {
	rec, _, direct := newTestReconciler(t, models.ModeLocalDirect, sampleStatus)
	direct.responses[devicesEndpoint] = `{"devices":[{"name":"sprinkler valve","type":"servo","pin":12}]}`

	devices, err := rec.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.AttachedDevice{{Name: "sprinkler valve", Type: "servo", Pin: 12}}, devices)
}
