package analytics

import "github.com/ukydev/fleet-insights/internal/models"

// EffectiveSpeed is the speed used for active/idle/offline decisions.
// Missing, non-numeric or negative readings count as 0.
func EffectiveSpeed(v models.Vehicle) float64 {
	s := v.Speed.Float()
	if s < 0 {
		return 0
	}
	return s
}

// Classify returns the operational state of a vehicle.
func Classify(v models.Vehicle) models.VehicleState {
	switch {
	case EffectiveSpeed(v) > 0:
		return models.StateActive
	case v.IsActive:
		return models.StateIdle
	default:
		return models.StateOffline
	}
}

// StateCounts holds the number of vehicles per state.
type StateCounts struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Idle    int `json:"idle"`
	Offline int `json:"offline"`
}

// CountStates classifies every vehicle.
func CountStates(vehicles []models.Vehicle) StateCounts {
	c := StateCounts{Total: len(vehicles)}
	for _, v := range vehicles {
		switch Classify(v) {
		case models.StateActive:
			c.Active++
		case models.StateIdle:
			c.Idle++
		default:
			c.Offline++
		}
	}
	return c
}
