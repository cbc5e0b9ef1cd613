package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"nexadomus/internal/models"
	"nexadomus/internal/repository"
	"nexadomus/internal/schedule"
)

// memStore is an in-memory implementation of every repository interface.
type memStore struct {
	mu           sync.Mutex
	states       map[models.DeviceKind]models.DeviceState
	sched        *models.ScheduleEntry
	manual       *models.ManualDuration
	timer        models.TimerState
	mode         models.ConnectivityMode
	events       []models.CommandEvent
	saveErr      error
	timerSaveErr error
	timerOps     []string
}

func newMemStore() *memStore {
	return &memStore{states: map[models.DeviceKind]models.DeviceState{}}
}

func (m *memStore) repos() *repository.Repository {
	return &repository.Repository{StateCache: m, Schedule: m, Timer: m, Mode: m, EventRepo: m}
}

func (m *memStore) Save(_ context.Context, s models.DeviceState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.states[s.Kind] = s
	return nil
}

func (m *memStore) Load(_ context.Context, kind models.DeviceKind) (models.DeviceState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[kind]
	return s, ok, nil
}

func (m *memStore) LoadAll(_ context.Context) ([]models.DeviceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DeviceState, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (m *memStore) SaveSchedule(_ context.Context, e models.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sched = &e
	return nil
}

func (m *memStore) LoadSchedule(_ context.Context) (models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched == nil {
		return schedule.Default(), nil
	}
	return *m.sched, nil
}

func (m *memStore) SaveManual(_ context.Context, d models.ManualDuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manual = &d
	return nil
}

func (m *memStore) LoadManual(_ context.Context) (models.ManualDuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.manual == nil {
		return schedule.DefaultManual(), nil
	}
	return schedule.ClampManual(*m.manual), nil
}

func (m *memStore) SaveTimer(_ context.Context, t models.TimerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timerSaveErr != nil {
		return m.timerSaveErr
	}
	m.timer = t
	m.timerOps = append(m.timerOps, "save")
	return nil
}

func (m *memStore) LoadTimer(_ context.Context) (models.TimerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer, nil
}

func (m *memStore) ClearTimer(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer = models.TimerState{}
	m.timerOps = append(m.timerOps, "clear")
	return nil
}

func (m *memStore) SaveMode(_ context.Context, mode models.ConnectivityMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	return nil
}

func (m *memStore) LoadMode(_ context.Context) (models.ConnectivityMode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, nil
}

func (m *memStore) Append(_ context.Context, e models.CommandEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) List(_ context.Context, from, to time.Time, kind string) ([]models.CommandEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CommandEvent
	for _, e := range m.events {
		if kind == "" || string(e.Kind) == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) persistedTimer() models.TimerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer
}

func (m *memStore) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// fakeProbe reports a settable mode.
type fakeProbe struct {
	mu   sync.Mutex
	mode models.ConnectivityMode
}

func (p *fakeProbe) Probe(context.Context) models.ConnectivityMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *fakeProbe) set(m models.ConnectivityMode) {
	p.mu.Lock()
	p.mode = m
	p.mu.Unlock()
}

// fakeSender records every payload and answers from a table.
type fakeSender struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]string
	err       error
	block     chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, payload string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, payload)
	block, err, resp := s.block, s.err, s.responses[payload]
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if resp == "" {
		resp = "OK"
	}
	return resp, nil
}

func (s *fakeSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
