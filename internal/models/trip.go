package models

// Trip represents one vehicle movement record from the GPS API.
type Trip struct {
	StartTime       string      `json:"StartTime"`
	FinishTime      string      `json:"FinishTime"`
	StartAddress    string      `json:"StartAddress"`
	FinishAddress   string      `json:"FinishAddress"`
	TotalDistance   Number      `json:"TotalDistance"`          // in kilometers
	AverageSpeed    Number      `json:"AverageSpeed"`           // km/h
	MaxSpeed        Number      `json:"MaxSpeed"`               // km/h
	FuelConsumed    *Measure    `json:"FuelConsumed,omitempty"` // liters
	TripCost        *Measure    `json:"TripCost,omitempty"`
	TripWaitingTime WaitingTime `json:"TripWaitingTime"`
	DriverName      string      `json:"DriverName"`
}

// Fuel returns the consumed fuel in liters, 0 when not reported.
func (t Trip) Fuel() float64 {
	if t.FuelConsumed == nil {
		return 0
	}
	return t.FuelConsumed.Value.Float()
}

// Cost returns the trip cost, 0 when not reported.
func (t Trip) Cost() float64 {
	if t.TripCost == nil {
		return 0
	}
	return t.TripCost.Value.Float()
}

// TripWithVehicle is a trip annotated with the vehicle it belongs to.
type TripWithVehicle struct {
	Trip
	VehicleCode string `json:"vehicleCode"`
	VehicleName string `json:"vehicleName"`
	VehicleSPZ  string `json:"vehicleSPZ"`
}

// WithVehicle annotates trips with the owning vehicle.
func WithVehicle(v Vehicle, trips []Trip) []TripWithVehicle {
	out := make([]TripWithVehicle, 0, len(trips))
	for _, t := range trips {
		out = append(out, TripWithVehicle{
			Trip:        t,
			VehicleCode: v.Code,
			VehicleName: v.Name,
			VehicleSPZ:  v.SPZ,
		})
	}
	return out
}
