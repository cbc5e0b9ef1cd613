package models

import "time"

// DeviceStatus is one decoded /status snapshot. It is replaced wholesale on
// every successful poll.
type DeviceStatus struct {
	SprinklerAngle   int             `json:"sprinkler_angle"`
	SprinklerOn      bool            `json:"sprinkler_on"`
	GarageAngle      int             `json:"garage_angle"`
	GarageOpen       bool            `json:"garage_open"`
	LightsBrightness int             `json:"lights_brightness"`
	ClimateKnown     bool            `json:"climate_known"`
	ClimateOn        bool            `json:"climate_on"`
	Schedule         ScheduleEntry   `json:"schedule"`
	Timer            ControllerTimer `json:"timer"`
	// OperatingMode is the controller's own uplink state, unrelated to the
	// client's ConnectivityMode.
	OperatingMode string    `json:"operating_mode"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// ControllerTimer is the countdown the controller reports for the sprinkler.
type ControllerTimer struct {
	Active           bool `json:"active"`
	RemainingSeconds int  `json:"remaining_seconds"`
}

// AttachedDevice is one entry of the controller's /devices listing.
type AttachedDevice struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type"`
	Pin  int    `json:"pin,omitempty"`
}
