// Package ingest consumes observation messages from the queue and writes them
// to the record store.
package ingest

import (
	"time"
)

// Observation types accepted on the queue.
const (
	TypeTemperature     = "temperature"
	TypeBCS             = "bcs"
	TypePosture         = "posture"
	TypeHealthStatus    = "health_status"
	TypeFertilityStatus = "fertility_status"
	TypeHeatStatus      = "heat_status"
	TypeBreathRate      = "breath_rate"
	TypeVulvaSwelling   = "vulva_swelling"
)

// ObservationMessage is the JSON wire format for one observation. Numeric
// observations carry Value; categorical ones carry Status. DeviceID is set
// for device-scoped types (temperature), PigID for animal-scoped types.
type ObservationMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Status    string    `json:"status,omitempty"`
	DeviceID  int64     `json:"deviceId,omitempty"`
	PigID     int64     `json:"pigId,omitempty"`
	Value     float64   `json:"value,omitempty"`
}
