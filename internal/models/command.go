package models

import (
	"fmt"
	"strings"
)

// DeviceKind identifies one of the fixed device families the controller drives.
type DeviceKind string

const (
	KindGarage     DeviceKind = "garage"
	KindLights     DeviceKind = "lights"
	KindSprinklers DeviceKind = "sprinklers"
	KindClimate    DeviceKind = "climate"
	KindCustom     DeviceKind = "custom"
)

// DeviceKinds lists every supported kind in display order.
var DeviceKinds = []DeviceKind{KindGarage, KindLights, KindSprinklers, KindClimate, KindCustom}

// ParseDeviceKind accepts the kind names used on the HTTP API and CLI.
func ParseDeviceKind(s string) (DeviceKind, error) {
	switch k := DeviceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindGarage, KindLights, KindSprinklers, KindClimate, KindCustom:
		return k, nil
	case "sprinkler":
		return KindSprinklers, nil
	case "ac":
		return KindClimate, nil
	default:
		return "", fmt.Errorf("unknown device kind %q", s)
	}
}

// Command parameter names understood by the encoders.
const (
	ParamBrightness      = "brightness"
	ParamDurationSeconds = "duration_seconds"
	ParamSchedule        = "schedule"
)

// DeviceCommand is an abstract command built per call. Parameters are copied on
// construction so the caller cannot mutate a command after it was submitted.
type DeviceCommand struct {
	Kind   DeviceKind
	Action string
	params map[string]string
}

// NewDeviceCommand builds a command, copying params.
func NewDeviceCommand(kind DeviceKind, action string, params map[string]string) DeviceCommand {
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return DeviceCommand{Kind: kind, Action: strings.TrimSpace(action), params: cp}
}

// Param returns a single parameter value.
func (c DeviceCommand) Param(name string) (string, bool) {
	v, ok := c.params[name]
	return v, ok
}

// Params returns a copy of all parameters.
func (c DeviceCommand) Params() map[string]string {
	cp := make(map[string]string, len(c.params))
	for k, v := range c.params {
		cp[k] = v
	}
	return cp
}

func (c DeviceCommand) String() string {
	if len(c.params) == 0 {
		return string(c.Kind) + ":" + c.Action
	}
	return fmt.Sprintf("%s:%s %v", c.Kind, c.Action, c.params)
}

// ConnectivityMode is the client-side classification of the current network attachment.
type ConnectivityMode string

const (
	ModeLocalDirect ConnectivityMode = "local_direct"
	ModeRemoteOnly  ConnectivityMode = "remote_only"
	ModeOffline     ConnectivityMode = "offline"
)

// ParseConnectivityMode accepts both the persisted names and the short config names.
func ParseConnectivityMode(s string) (ConnectivityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeLocalDirect), "local", "direct":
		return ModeLocalDirect, nil
	case string(ModeRemoteOnly), "remote", "relay":
		return ModeRemoteOnly, nil
	case string(ModeOffline):
		return ModeOffline, nil
	default:
		return "", fmt.Errorf("unknown connectivity mode %q", s)
	}
}

// Path records which transport served a command.
type Path string

const (
	PathDirect Path = "direct"
	PathRelay  Path = "relay"
	PathNone   Path = "none"
)

// Outcome classifications presented to users.
const (
	ClassExecutedLocally    = "executed_locally"
	ClassRelayedUnconfirmed = "relayed_unconfirmed"
	ClassFailed             = "failed"
)

// CommandOutcome is the normalized result of routing one command.
type CommandOutcome struct {
	Succeeded   bool             `json:"succeeded"`
	PathUsed    Path             `json:"path_used"`
	Mode        ConnectivityMode `json:"mode"`
	RawResponse string           `json:"raw_response,omitempty"`
	ErrorKind   ErrorKind        `json:"error_kind,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Confirmed reports whether the controller itself acknowledged execution.
// A relayed command was only accepted by the relay and is never confirmed.
func (o CommandOutcome) Confirmed() bool {
	return o.Succeeded && o.PathUsed == PathDirect
}

// Classification returns one of the Class* values.
func (o CommandOutcome) Classification() string {
	switch {
	case o.Succeeded && o.PathUsed == PathDirect:
		return ClassExecutedLocally
	case o.Succeeded && o.PathUsed == PathRelay:
		return ClassRelayedUnconfirmed
	default:
		return ClassFailed
	}
}
