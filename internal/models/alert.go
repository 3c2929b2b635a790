package models

import "time"

// VehicleState is the operational state shown on markers and tags.
type VehicleState string

const (
	StateActive  VehicleState = "active"
	StateIdle    VehicleState = "idle"
	StateOffline VehicleState = "offline"
)

// AlertKind identifies the condition that raised an alert.
type AlertKind string

const (
	AlertSpeeding AlertKind = "speeding"
	AlertOffline  AlertKind = "offline"
	AlertIdle     AlertKind = "idle"
)

// AlertSeverity is the severity of a vehicle alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a derived vehicle alert.
type Alert struct {
	ID          string        `json:"id,omitempty"`
	VehicleCode string        `json:"vehicleCode"`
	VehicleName string        `json:"vehicleName"`
	Kind        AlertKind     `json:"kind"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	Time        string        `json:"time"` // e.g. "15m ago"
	TriggeredAt time.Time     `json:"triggeredAt"`
}
