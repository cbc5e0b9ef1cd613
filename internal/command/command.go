// Package command translates abstract device commands into the two wire
// vocabularies: the controller's local HTTP paths and the relay's command strings.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nexadomus/internal/models"
	"nexadomus/internal/schedule"
)

// Actions understood per device kind.
const (
	ActionOpen     = "open"
	ActionClose    = "close"
	ActionToggle   = "toggle"
	ActionSet      = "set"
	ActionOn       = "on"
	ActionOff      = "off"
	ActionSchedule = "schedule"
)

// Light levels used by the relay vocabulary.
const (
	LevelOff    = "off"
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

const (
	MaxBrightness = 255

	relaySchedulePrefix = "sprinkler_schedule_"
)

var levelBrightness = map[string]int{
	LevelOff:    0,
	LevelLow:    85,
	LevelMedium: 170,
	LevelHigh:   MaxBrightness,
}

var errNoLocalEndpoint = errors.New("no local endpoint for this command")

// BrightnessLevel maps 0..255 onto the relay light levels.
func BrightnessLevel(brightness int) (string, error) {
	switch {
	case brightness < 0 || brightness > MaxBrightness:
		return "", fmt.Errorf("brightness %d outside 0..%d", brightness, MaxBrightness)
	case brightness == 0:
		return LevelOff, nil
	case brightness <= 85:
		return LevelLow, nil
	case brightness <= 170:
		return LevelMedium, nil
	default:
		return LevelHigh, nil
	}
}

// Garage builds a garage command (open, close or toggle).
func Garage(action string) models.DeviceCommand {
	return models.NewDeviceCommand(models.KindGarage, action, nil)
}

// Lights builds a brightness command.
func Lights(brightness int) models.DeviceCommand {
	return models.NewDeviceCommand(models.KindLights, ActionSet, map[string]string{
		models.ParamBrightness: strconv.Itoa(brightness),
	})
}

// SprinklersOn builds an "on" command. seconds <= 0 means run until turned off.
func SprinklersOn(seconds int) models.DeviceCommand {
	if seconds <= 0 {
		return models.NewDeviceCommand(models.KindSprinklers, ActionOn, nil)
	}
	return models.NewDeviceCommand(models.KindSprinklers, ActionOn, map[string]string{
		models.ParamDurationSeconds: strconv.Itoa(seconds),
	})
}

// SprinklersOff builds an "off" command.
func SprinklersOff() models.DeviceCommand {
	return models.NewDeviceCommand(models.KindSprinklers, ActionOff, nil)
}

// SprinklerSchedule builds a schedule upload command.
func SprinklerSchedule(e models.ScheduleEntry) models.DeviceCommand {
	return models.NewDeviceCommand(models.KindSprinklers, ActionSchedule, map[string]string{
		models.ParamSchedule: schedule.Encode(e),
	})
}

// Climate builds an A/C on/off command.
func Climate(on bool) models.DeviceCommand {
	action := ActionOff
	if on {
		action = ActionOn
	}
	return models.NewDeviceCommand(models.KindClimate, action, nil)
}

// Custom wraps an arbitrary relay command string.
func Custom(raw string) models.DeviceCommand {
	return models.NewDeviceCommand(models.KindCustom, raw, nil)
}

// DirectPath returns the controller path and query for cmd.
func DirectPath(cmd models.DeviceCommand) (string, error) {
	switch cmd.Kind {
	case models.KindGarage:
		if !isGarageAction(cmd.Action) {
			return "", unknownAction(cmd)
		}
		return "/garage?state=" + cmd.Action, nil

	case models.KindLights:
		b, err := brightnessOf(cmd)
		if err != nil {
			return "", err
		}
		return "/lights?brightness=" + strconv.Itoa(b), nil

	case models.KindSprinklers:
		switch cmd.Action {
		case ActionOn:
			secs, ok, err := durationOf(cmd)
			if err != nil {
				return "", err
			}
			if ok {
				return "/sprinklers?state=on&duration_seconds=" + strconv.Itoa(secs), nil
			}
			return "/sprinklers?state=on", nil
		case ActionOff:
			return "/sprinklers?state=off", nil
		case ActionSchedule:
			return "", &models.CommandError{Kind: models.ErrKindUnknownCommand, Detail: cmd.String(), Err: errNoLocalEndpoint}
		}
		return "", unknownAction(cmd)

	case models.KindClimate:
		if cmd.Action != ActionOn && cmd.Action != ActionOff {
			return "", unknownAction(cmd)
		}
		return "/ac?state=" + cmd.Action, nil

	case models.KindCustom:
		return "", &models.CommandError{Kind: models.ErrKindUnknownCommand, Detail: cmd.String(), Err: errNoLocalEndpoint}
	}
	return "", unknownAction(cmd)
}

// RelayCommand returns the relay vocabulary string for cmd.
func RelayCommand(cmd models.DeviceCommand) (string, error) {
	switch cmd.Kind {
	case models.KindGarage:
		switch cmd.Action {
		case ActionOpen, ActionToggle:
			// the relay has no toggle; the controller treats it as open
			return "garage_open", nil
		case ActionClose:
			return "garage_close", nil
		}
		return "", unknownAction(cmd)

	case models.KindLights:
		b, err := brightnessOf(cmd)
		if err != nil {
			return "", err
		}
		level, err := BrightnessLevel(b)
		if err != nil {
			return "", encodingError(cmd, err)
		}
		return "lights_" + level, nil

	case models.KindSprinklers:
		switch cmd.Action {
		case ActionOn:
			secs, ok, err := durationOf(cmd)
			if err != nil {
				return "", err
			}
			if ok {
				return "sprinkler_on_" + strconv.Itoa(secs), nil
			}
			return "sprinkler_on", nil
		case ActionOff:
			return "sprinkler_off", nil
		case ActionSchedule:
			wire, _ := cmd.Param(models.ParamSchedule)
			if _, err := schedule.Decode(wire); err != nil {
				return "", encodingError(cmd, err)
			}
			return relaySchedulePrefix + wire, nil
		}
		return "", unknownAction(cmd)

	case models.KindClimate:
		switch cmd.Action {
		case ActionOn:
			return "ac_on", nil
		case ActionOff:
			return "ac_off", nil
		}
		return "", unknownAction(cmd)

	case models.KindCustom:
		if cmd.Action == "" || strings.ContainsAny(cmd.Action, "\r\n") {
			return "", encodingError(cmd, errors.New("custom command must be a non-empty single line"))
		}
		return cmd.Action, nil
	}
	return "", unknownAction(cmd)
}

// ParseRelaySchedule extracts a schedule from a relay schedule command.
func ParseRelaySchedule(s string) (models.ScheduleEntry, error) {
	wire, ok := strings.CutPrefix(s, relaySchedulePrefix)
	if !ok {
		return models.ScheduleEntry{}, fmt.Errorf("%q is not a schedule command", s)
	}
	return schedule.Decode(wire)
}

func isGarageAction(a string) bool {
	return a == ActionOpen || a == ActionClose || a == ActionToggle
}

// Brightness returns the 0..255 brightness a lights command asks for.
func Brightness(cmd models.DeviceCommand) (int, error) {
	return brightnessOf(cmd)
}

// Duration returns the duration_seconds a sprinklers on command carries.
// ok is false for an untimed run.
func Duration(cmd models.DeviceCommand) (secs int, ok bool, err error) {
	return durationOf(cmd)
}

// brightnessOf reads the brightness parameter, or a level name given as the action.
func brightnessOf(cmd models.DeviceCommand) (int, error) {
	if b, ok := levelBrightness[cmd.Action]; ok {
		return b, nil
	}
	if cmd.Action != ActionSet && cmd.Action != "" {
		return 0, unknownAction(cmd)
	}
	raw, ok := cmd.Param(models.ParamBrightness)
	if !ok {
		return 0, encodingError(cmd, errors.New("missing brightness"))
	}
	b, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, encodingError(cmd, fmt.Errorf("brightness %q: %w", raw, err))
	}
	if b < 0 || b > MaxBrightness {
		return 0, encodingError(cmd, fmt.Errorf("brightness %d outside 0..%d", b, MaxBrightness))
	}
	return b, nil
}

// durationOf reads an optional positive duration_seconds parameter.
func durationOf(cmd models.DeviceCommand) (int, bool, error) {
	raw, ok := cmd.Param(models.ParamDurationSeconds)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, encodingError(cmd, fmt.Errorf("duration %q: %w", raw, err))
	}
	if secs <= 0 {
		return 0, false, encodingError(cmd, fmt.Errorf("duration %d must be positive", secs))
	}
	return secs, true, nil
}

func unknownAction(cmd models.DeviceCommand) error {
	return &models.CommandError{Kind: models.ErrKindUnknownCommand, Detail: cmd.String()}
}

func encodingError(cmd models.DeviceCommand, err error) error {
	return &models.CommandError{Kind: models.ErrKindEncoding, Detail: cmd.String(), Err: err}
}
