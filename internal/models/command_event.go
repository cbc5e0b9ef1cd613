package models

import "time"

// CommandEvent is a single entry in the command history log.
type CommandEvent struct {
	EventID    string           `json:"event_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Kind       DeviceKind       `json:"kind"`
	Action     string           `json:"action"`
	Path       Path             `json:"path"`
	Mode       ConnectivityMode `json:"mode"`
	Succeeded  bool             `json:"succeeded"`
	ErrorKind  ErrorKind        `json:"error_kind,omitempty"`
	Detail     string           `json:"detail,omitempty"`
}
