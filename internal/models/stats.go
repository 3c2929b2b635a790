package models

// DriverStats is the per-driver safety summary.
type DriverStats struct {
	Name          string  `json:"name"`
	VehicleName   string  `json:"vehicleName"`
	VehicleSPZ    string  `json:"vehicleSPZ"`
	TotalTrips    int     `json:"totalTrips"`
	TotalDistance float64 `json:"totalDistance"`
	AvgSpeed      float64 `json:"avgSpeed"`
	MaxSpeed      float64 `json:"maxSpeed"`
	// SpeedingEvents is a weighted penalty sum (3 per trip over 130 km/h,
	// 1 per trip over 110 km/h), not a count of trips.
	SpeedingEvents int     `json:"speedingEvents"`
	IdleMinutes    int     `json:"idleMinutes"`
	FuelPerKm      float64 `json:"fuelPerKm"`
	TotalFuel      float64 `json:"totalFuel"`
	TotalCost      float64 `json:"totalCost"`
	Score          int     `json:"score"`
}

// HealthStatus classifies a vehicle health score.
type HealthStatus string

const (
	HealthGood     HealthStatus = "good"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// VehicleHealth is the per-vehicle health summary.
type VehicleHealth struct {
	VehicleCode      string  `json:"vehicleCode"`
	VehicleName      string  `json:"vehicleName"`
	VehicleSPZ       string  `json:"vehicleSPZ"`
	IsActive         bool    `json:"isActive"`
	CurrentSpeed     float64 `json:"currentSpeed"`
	Odometer         float64 `json:"odometer"`
	LastSeen         string  `json:"lastSeen"`
	TotalTrips       int     `json:"totalTrips"`
	TotalDistance    float64 `json:"totalDistance"`
	AvgSpeed         float64 `json:"avgSpeed"`
	MaxSpeedRecorded float64 `json:"maxSpeedRecorded"`
	FuelEfficiency   float64 `json:"fuelEfficiency"` // L/100km
	// SpeedingEvents counts trips with MaxSpeed over 130 km/h.
	SpeedingEvents int          `json:"speedingEvents"`
	HealthScore    int          `json:"healthScore"`
	Status         HealthStatus `json:"status"`
}

// FleetHealthSummary reduces a set of VehicleHealth records.
type FleetHealthSummary struct {
	TotalVehicles  int     `json:"totalVehicles"`
	ActiveNow      int     `json:"activeNow"`
	GoodHealth     int     `json:"goodHealth"`
	WarningHealth  int     `json:"warningHealth"`
	CriticalHealth int     `json:"criticalHealth"`
	AvgHealthScore float64 `json:"avgHealthScore"`
	TotalOdometer  float64 `json:"totalOdometer"`
	AvgOdometer    float64 `json:"avgOdometer"`
}

// FuelSummary holds fleet-wide fuel totals.
type FuelSummary struct {
	TotalFuel     float64 `json:"totalFuel"`
	TotalCost     float64 `json:"totalCost"`
	TotalDistance float64 `json:"totalDistance"`
	AvgPer100km   float64 `json:"avgPer100km"`
	TotalTrips    int     `json:"totalTrips"`
}

// VehicleFuelRow holds fuel totals of a single vehicle.
type VehicleFuelRow struct {
	VehicleCode string  `json:"vehicleCode"`
	VehicleName string  `json:"vehicleName"`
	VehicleSPZ  string  `json:"vehicleSPZ"`
	Trips       int     `json:"trips"`
	Fuel        float64 `json:"fuel"`
	Cost        float64 `json:"cost"`
	Distance    float64 `json:"distance"`
	Per100km    float64 `json:"per100km"`
}

// DailyFuelPoint is one day of fleet fuel consumption.
type DailyFuelPoint struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Fuel float64 `json:"fuel"`
	Cost float64 `json:"cost"`
}

// VehicleEconomics summarises the trips of one vehicle.
type VehicleEconomics struct {
	VehicleCode   string  `json:"vehicleCode"`
	VehicleName   string  `json:"vehicleName"`
	VehicleSPZ    string  `json:"vehicleSPZ"`
	BranchName    string  `json:"branchName"`
	TotalTrips    int     `json:"totalTrips"`
	TotalDistance float64 `json:"totalDistance"`
	TotalFuel     float64 `json:"totalFuel"`
	TotalCost     float64 `json:"totalCost"`
	// FuelPer100km is nil when no trip reported fuel or no distance was
	// driven, so callers can tell "no data" apart from zero consumption.
	FuelPer100km *float64 `json:"fuelPer100km"`
	CostPerKm    float64  `json:"costPerKm"`
	AvgSpeed     float64  `json:"avgSpeed"`
	MaxSpeed     float64  `json:"maxSpeed"`
	Drivers      []string `json:"drivers"`
	HasFuelData  bool     `json:"hasFuelData"`
}

// DailyUsagePoint is one day of a single vehicle's usage.
type DailyUsagePoint struct {
	Date     string  `json:"date"`
	Fuel     float64 `json:"fuel"`
	Distance float64 `json:"distance"`
	Trips    int     `json:"trips"`
}
