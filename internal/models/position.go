package models

// PositionPoint is one recorded GPS fix. Coordinates may arrive as numeric
// strings.
type PositionPoint struct {
	Lat   Number `json:"Lat"`
	Lng   Number `json:"Lng"`
	Speed Number `json:"Speed"` // km/h
	Time  string `json:"Time"`
}

// VehiclePositions is the position history of one vehicle.
type VehiclePositions struct {
	VehicleCode string          `json:"VehicleCode"`
	Name        string          `json:"Name,omitempty"`
	Positions   []PositionPoint `json:"Positions"`
}

// RouteSummary describes a position history.
type RouteSummary struct {
	VehicleCode string  `json:"vehicleCode"`
	Points      int     `json:"points"`
	DistanceKm  float64 `json:"distanceKm"`
	MaxSpeed    float64 `json:"maxSpeed"`
	AvgSpeed    float64 `json:"avgSpeed"`
	Start       string  `json:"start,omitempty"`
	End         string  `json:"end,omitempty"`
}
