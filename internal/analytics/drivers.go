package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/ukydev/fleet-insights/internal/models"
)

// Speed thresholds used to weight driver speeding.
const (
	SevereSpeedKmh   = 130.0
	ModerateSpeedKmh = 110.0
)

// DriverAggregate accumulates the trips of a single driver.
type DriverAggregate struct {
	Name          string
	VehicleName   string
	VehicleSPZ    string
	Trips         int
	TotalDistance float64
	SpeedSum      float64
	MaxSpeed      float64
	// SpeedingEvents is a weighted penalty: 3 per trip over 130 km/h,
	// 1 per trip over 110 km/h.
	SpeedingEvents int
	IdleMinutes    int
	TotalFuel      float64
	TotalCost      float64
}

func speedingPenalty(maxSpeed float64) int {
	switch {
	case maxSpeed > SevereSpeedKmh:
		return 3
	case maxSpeed > ModerateSpeedKmh:
		return 1
	default:
		return 0
	}
}

// AggregateByDriver groups trips by trimmed driver name. Trips without a
// driver are skipped. Aggregates are returned in order of first appearance.
func AggregateByDriver(trips []models.TripWithVehicle) []*DriverAggregate {
	byName := make(map[string]*DriverAggregate)
	var ordered []*DriverAggregate

	for _, t := range trips {
		name := strings.TrimSpace(t.DriverName)
		if name == "" {
			continue
		}

		agg, ok := byName[name]
		if !ok {
			agg = &DriverAggregate{
				Name:        name,
				VehicleName: t.VehicleName,
				VehicleSPZ:  t.VehicleSPZ,
			}
			byName[name] = agg
			ordered = append(ordered, agg)
		}

		maxSpeed := t.MaxSpeed.Float()
		agg.Trips++
		agg.TotalDistance += t.TotalDistance.Float()
		agg.SpeedSum += t.AverageSpeed.Float()
		agg.MaxSpeed = math.Max(agg.MaxSpeed, maxSpeed)
		agg.SpeedingEvents += speedingPenalty(maxSpeed)
		agg.IdleMinutes += waitingMinutes(t.TripWaitingTime)
		agg.TotalFuel += t.Fuel()
		agg.TotalCost += t.Cost()
	}
	return ordered
}

// FleetFuelPerKm is total fuel over total distance across all aggregates.
func FleetFuelPerKm(aggs []*DriverAggregate) float64 {
	var fuel, dist float64
	for _, a := range aggs {
		fuel += a.TotalFuel
		dist += a.TotalDistance
	}
	return ratio(fuel, dist)
}

// DriverScore applies the penalty rules to a starting score of 100.
func DriverScore(speedingEvents, idleMinutes int, fuelPerKm, fleetAvgFuelPerKm float64) int {
	score := 100.0
	score -= float64(speedingEvents)
	score -= math.Floor(float64(idleMinutes) / 5)

	if fleetAvgFuelPerKm > 0 && fuelPerKm > fleetAvgFuelPerKm {
		excessPct := (fuelPerKm - fleetAvgFuelPerKm) / fleetAvgFuelPerKm * 100
		score -= math.Floor(finite(excessPct) / 20)
	}
	return clampScore(score)
}

// ComputeDriverStats scores every driver and ranks them by score, highest
// first. Drivers with equal scores keep their order of first appearance.
func ComputeDriverStats(trips []models.TripWithVehicle) []models.DriverStats {
	aggs := AggregateByDriver(trips)
	fleetAvg := FleetFuelPerKm(aggs)

	stats := make([]models.DriverStats, 0, len(aggs))
	for _, a := range aggs {
		fuelPerKm := ratio(a.TotalFuel, a.TotalDistance)
		avgSpeed := 0.0
		if a.Trips > 0 {
			avgSpeed = roundHalfUp(a.SpeedSum / float64(a.Trips))
		}
		stats = append(stats, models.DriverStats{
			Name:           a.Name,
			VehicleName:    a.VehicleName,
			VehicleSPZ:     a.VehicleSPZ,
			TotalTrips:     a.Trips,
			TotalDistance:  a.TotalDistance,
			AvgSpeed:       avgSpeed,
			MaxSpeed:       a.MaxSpeed,
			SpeedingEvents: a.SpeedingEvents,
			IdleMinutes:    a.IdleMinutes,
			FuelPerKm:      fuelPerKm,
			TotalFuel:      a.TotalFuel,
			TotalCost:      a.TotalCost,
			Score:          DriverScore(a.SpeedingEvents, a.IdleMinutes, fuelPerKm, fleetAvg),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Score > stats[j].Score
	})
	return stats
}
