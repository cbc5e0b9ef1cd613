package handlers

import (
	"context"
	"sync"

	"nexadomus/internal/models"
	"nexadomus/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDevices struct {
	out     models.CommandOutcome
	err     error
	lastCmd models.DeviceCommand
	calls   int
}

func (m *mockDevices) Control(_ context.Context, cmd models.DeviceCommand) (models.CommandOutcome, error) {
	m.calls++
	m.lastCmd = cmd
	return m.out, m.err
}

type mockSprinklers struct {
	onOut      models.CommandOutcome
	onErr      error
	lastOn     *models.ManualDuration
	onCalls    int
	offOut     models.CommandOutcome
	offErr     error
	offCalls   int
	timer      models.TimerState
	sched      models.ScheduleEntry
	schedErr   error
	pushOut    models.CommandOutcome
	saveErr    error
	lastSaved  models.ScheduleEntry
	manual     models.ManualDuration
	manualErr  error
	lastManual models.ManualDuration
}

func (m *mockSprinklers) TurnOn(_ context.Context, d *models.ManualDuration) (models.CommandOutcome, error) {
	m.onCalls++
	m.lastOn = d
	return m.onOut, m.onErr
}

func (m *mockSprinklers) TurnOff(context.Context) (models.CommandOutcome, error) {
	m.offCalls++
	return m.offOut, m.offErr
}

func (m *mockSprinklers) Timer() models.TimerState { return m.timer }

func (m *mockSprinklers) GetSchedule(context.Context) (models.ScheduleEntry, error) {
	return m.sched, m.schedErr
}

func (m *mockSprinklers) SaveSchedule(_ context.Context, e models.ScheduleEntry) (models.ScheduleEntry, models.CommandOutcome, error) {
	m.lastSaved = e
	if m.saveErr != nil {
		return models.ScheduleEntry{}, models.CommandOutcome{}, m.saveErr
	}
	return e, m.pushOut, nil
}

func (m *mockSprinklers) GetManualDuration(context.Context) (models.ManualDuration, error) {
	return m.manual, m.manualErr
}

func (m *mockSprinklers) SaveManualDuration(_ context.Context, d models.ManualDuration) (models.ManualDuration, error) {
	m.lastManual = d
	if m.manualErr != nil {
		return models.ManualDuration{}, m.manualErr
	}
	if d.Minutes >= 15 {
		d = models.ManualDuration{Minutes: 15}
	}
	return d, nil
}

type mockStatus struct {
	status  models.DeviceStatus
	err     error
	devices []models.AttachedDevice
	devErr  error
}

func (m *mockStatus) Refresh(context.Context) (models.DeviceStatus, error) {
	return m.status, m.err
}

func (m *mockStatus) ListDevices(context.Context) ([]models.AttachedDevice, error) {
	return m.devices, m.devErr
}

type mockMonitoring struct {
	mu    sync.Mutex
	state models.StateSnapshot
	err   error
	calls int
}

func (m *mockMonitoring) GetState(context.Context) (models.StateSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.CommandEvent
	err      error
	lastKind string
	calls    int
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.CommandEvent, error) {
	m.calls++
	m.lastKind = f.Kind
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
