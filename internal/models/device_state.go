package models

import "time"

// Last-known state values.
const (
	StateOn     = "on"
	StateOff    = "off"
	StateOpen   = "open"
	StateClosed = "closed"
)

// DeviceState is the cached last-known state of a single device kind.
type DeviceState struct {
	Kind      DeviceKind `json:"kind"`
	State     string     `json:"state"`           // on | off | open | closed | light level
	Level     int        `json:"level,omitempty"` // brightness 0..255 for lights
	Confirmed bool       `json:"confirmed"`       // false when only a relay accepted the change
	Source    string     `json:"source"`          // status | direct | relay
	UpdatedAt time.Time  `json:"updated_at"`
}

// Sources for DeviceState.Source.
const (
	SourceStatus = "status"
	SourceDirect = "direct"
	SourceRelay  = "relay"
)
