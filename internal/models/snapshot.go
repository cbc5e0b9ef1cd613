package models

import "time"

// StateSnapshot is the combined view served to clients. Mode is the
// client-observed connectivity; OperatingMode is what the controller reports.
type StateSnapshot struct {
	Mode            ConnectivityMode `json:"mode"`
	OperatingMode   string           `json:"operating_mode,omitempty"`
	Status          *DeviceStatus    `json:"status,omitempty"`
	Devices         []DeviceState    `json:"devices"`
	Timer           TimerState       `json:"timer"`
	Schedule        ScheduleEntry    `json:"schedule"`
	ScheduleSummary string           `json:"schedule_summary"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
