package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"
	"nexadomus/internal/service"
)

func TestSprinklersOn_BodyOptional(t *testing.T) {
	sp := &mockSprinklers{
		onOut: models.CommandOutcome{Succeeded: true, PathUsed: models.PathDirect, Mode: models.ModeLocalDirect},
		timer: models.TimerState{Active: true, RemainingSeconds: 300},
	}
	r := newTestRouter(&service.Service{Sprinklers: sp})

	w := doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", "")
	if w.Code != http.StatusOK {
		t.Fatalf("on status=%d body=%s", w.Code, w.Body.String())
	}
	if sp.lastOn != nil {
		t.Fatalf("empty body should use stored duration, got %+v", sp.lastOn)
	}
	var resp struct {
		Status string            `json:"status"`
		Timer  models.TimerState `json:"timer"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != models.ClassExecutedLocally || resp.Timer.RemainingSeconds != 300 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", `{"minutes":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("on status=%d body=%s", w.Code, w.Body.String())
	}
	if sp.lastOn == nil || *sp.lastOn != (models.ManualDuration{Minutes: 2}) {
		t.Fatalf("explicit duration not passed: %+v", sp.lastOn)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", `{"seconds":75}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("seconds over 59 status=%d", w.Code)
	}
}

func TestSprinklersOn_Failures(t *testing.T) {
	sp := &mockSprinklers{
		onOut: models.CommandOutcome{PathUsed: models.PathNone, Mode: models.ModeOffline},
		onErr: models.NewCommandError(models.ErrKindNoConnectivity, errors.New("offline")),
	}
	r := newTestRouter(&service.Service{Sprinklers: sp})

	w := doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", `{"minutes":1}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("offline status=%d", w.Code)
	}
	var body commandBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.ErrorKind != models.ErrKindNoConnectivity || body.Outcome.Mode != models.ModeOffline {
		t.Fatalf("unexpected body: %+v", body)
	}

	sp.onErr = fmt.Errorf("load manual duration: %w", errors.New("db down"))
	w = doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure status=%d", w.Code)
	}

	sp.onErr = fmt.Errorf("%w: too long", schedule.ErrInvalidManual)
	w = doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/on", `{"minutes":99}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid manual status=%d", w.Code)
	}
}

func TestSprinklersOffAndTimer(t *testing.T) {
	sp := &mockSprinklers{
		offOut: models.CommandOutcome{Succeeded: true, PathUsed: models.PathRelay, Mode: models.ModeRemoteOnly},
		timer:  models.TimerState{},
	}
	r := newTestRouter(&service.Service{Sprinklers: sp})

	w := doJSON(t, r, http.MethodPost, "/api/v1/sprinklers/off", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("relayed off status=%d", w.Code)
	}
	if sp.offCalls != 1 {
		t.Fatalf("TurnOff calls=%d", sp.offCalls)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/sprinklers/timer", "")
	if w.Code != http.StatusOK {
		t.Fatalf("timer status=%d", w.Code)
	}
	var ts models.TimerState
	_ = json.Unmarshal(w.Body.Bytes(), &ts)
	if ts.Active {
		t.Fatalf("expected idle timer, got %+v", ts)
	}
}

func TestSchedule_GetAndPut(t *testing.T) {
	sp := &mockSprinklers{
		sched:   models.ScheduleEntry{Days: [7]bool{false, true, false, true}, StartHour: 6, DurationMinutes: 60},
		pushOut: models.CommandOutcome{PathUsed: models.PathNone, Mode: models.ModeLocalDirect, ErrorKind: models.ErrKindUnknownCommand},
	}
	r := newTestRouter(&service.Service{Sprinklers: sp})

	w := doJSON(t, r, http.MethodGet, "/api/v1/sprinklers/schedule", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get schedule status=%d", w.Code)
	}
	var got ScheduleResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Summary != "Mon, Wed\n6:00:00 AM for 1 hour" {
		t.Fatalf("summary=%q", got.Summary)
	}
	if got.Push != nil {
		t.Fatalf("GET should not carry push result")
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/sprinklers/schedule",
		`{"days":[true,false,false,false,false,false,false],"start_hour":22,"start_minute":15,"duration_minutes":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put schedule status=%d body=%s", w.Code, w.Body.String())
	}
	if sp.lastSaved.StartHour != 22 || sp.lastSaved.StartMinute != 15 || !sp.lastSaved.Days[0] {
		t.Fatalf("unexpected saved schedule: %+v", sp.lastSaved)
	}
	got = ScheduleResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Push == nil || got.Push.Status != models.ClassFailed {
		t.Fatalf("push result missing or wrong: %+v", got.Push)
	}

	sp.saveErr = fmt.Errorf("%w: start_hour", schedule.ErrInvalidSchedule)
	w = doJSON(t, r, http.MethodPut, "/api/v1/sprinklers/schedule", `{"start_hour":30}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid schedule status=%d", w.Code)
	}
}

func TestManualDuration_GetAndPut(t *testing.T) {
	sp := &mockSprinklers{manual: models.ManualDuration{Minutes: 5}}
	r := newTestRouter(&service.Service{Sprinklers: sp})

	w := doJSON(t, r, http.MethodGet, "/api/v1/sprinklers/manual-duration", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get manual status=%d", w.Code)
	}
	var got ManualDurationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Minutes != 5 || got.Seconds != 0 || got.Formatted == "" {
		t.Fatalf("unexpected manual duration: %+v", got)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/sprinklers/manual-duration", `{"minutes":20,"seconds":30}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put manual status=%d body=%s", w.Code, w.Body.String())
	}
	got = ManualDurationResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Minutes != 15 || got.Seconds != 0 {
		t.Fatalf("expected clamped 15:00, got %+v", got)
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/sprinklers/manual-duration", `{"minutes":3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing seconds status=%d", w.Code)
	}
}
