package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"
)

// Servo angles the controller reports for the active position.
const (
	sprinklerOnAngle = 180
	garageOpenAngle  = 90
)

var validate = validator.New()

// statusPayload mirrors the controller's /status JSON.
type statusPayload struct {
	Sprinkler     *int                      `json:"sprinkler" validate:"required,min=0,max=180"`
	Garage        *int                      `json:"garage" validate:"required,min=0,max=180"`
	Lights        *int                      `json:"lights" validate:"required,min=0,max=255"`
	AC            *bool                     `json:"ac"`
	OperatingMode string                    `json:"operating_mode"`
	Schedule      *sprinklerSchedulePayload `json:"sprinkler_schedule"`
}

type sprinklerSchedulePayload struct {
	Days             []bool `json:"days" validate:"omitempty,len=7"`
	StartHour        *int   `json:"startHour" validate:"omitempty,min=0,max=23"`
	StartMinute      *int   `json:"startMinute" validate:"omitempty,min=0,max=59"`
	StartSecond      *int   `json:"startSecond" validate:"omitempty,min=0,max=59"`
	Duration         *int   `json:"duration" validate:"omitempty,min=0,max=60"`
	DurationSeconds  *int   `json:"durationSeconds" validate:"omitempty,min=0,max=59"`
	TimerActive      bool   `json:"timer_active"`
	RemainingSeconds int    `json:"remaining_seconds" validate:"min=0"`
}

type devicesPayload struct {
	Devices []models.AttachedDevice `json:"devices" validate:"dive"`
}

// decodeStatus turns a raw /status body into a DeviceStatus. Any syntax, type
// or range problem is reported as MalformedResponse. fallback supplies
// schedule fields the controller omitted. The bool reports whether the
// body carried a schedule at all.
func decodeStatus(raw string, fallback models.ScheduleEntry, now time.Time) (models.DeviceStatus, bool, error) {
	var p statusPayload
	if err := decodeSingle(raw, &p); err != nil {
		return models.DeviceStatus{}, false, malformed(err)
	}
	if err := validate.Struct(p); err != nil {
		return models.DeviceStatus{}, false, malformed(err)
	}

	st := models.DeviceStatus{
		SprinklerAngle:   *p.Sprinkler,
		SprinklerOn:      *p.Sprinkler == sprinklerOnAngle,
		GarageAngle:      *p.Garage,
		GarageOpen:       *p.Garage == garageOpenAngle,
		LightsBrightness: *p.Lights,
		OperatingMode:    p.OperatingMode,
		Schedule:         fallback,
		FetchedAt:        now.UTC(),
	}
	if p.AC != nil {
		st.ClimateKnown = true
		st.ClimateOn = *p.AC
	}
	if s := p.Schedule; s != nil {
		e := fallback
		if len(s.Days) == len(e.Days) {
			copy(e.Days[:], s.Days)
		}
		setIf(&e.StartHour, s.StartHour)
		setIf(&e.StartMinute, s.StartMinute)
		setIf(&e.StartSecond, s.StartSecond)
		setIf(&e.DurationMinutes, s.Duration)
		setIf(&e.DurationSeconds, s.DurationSeconds)
		st.Schedule = schedule.Clamp(e)
		if s.TimerActive {
			st.Timer = models.ControllerTimer{Active: true, RemainingSeconds: s.RemainingSeconds}
		}
	}
	return st, p.Schedule != nil, nil
}

func decodeDevices(raw string) ([]models.AttachedDevice, error) {
	var p devicesPayload
	trimmed := bytes.TrimSpace([]byte(raw))
	// Both a bare array and {"devices": [...]} are accepted.
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &p.Devices); err != nil {
			return nil, malformed(err)
		}
	} else if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, malformed(err)
	}
	if err := validate.Struct(p); err != nil {
		return nil, malformed(err)
	}
	if p.Devices == nil {
		p.Devices = []models.AttachedDevice{}
	}
	return p.Devices, nil
}

func decodeSingle(raw string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func setIf(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func malformed(err error) error {
	return models.NewCommandError(models.ErrKindMalformedResponse, err)
}
