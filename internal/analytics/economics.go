package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/ukydev/fleet-insights/internal/models"
)

// ComputeVehicleEconomics summarises the trips of a single vehicle.
func ComputeVehicleEconomics(v models.Vehicle, trips []models.Trip) models.VehicleEconomics {
	var totalDistance, totalFuel, totalCost, speedSum, maxSpeed float64
	fuelDataPoints := 0
	drivers := []string{}
	seen := make(map[string]bool)

	for _, t := range trips {
		totalDistance += t.TotalDistance.Float()

		fuel := t.Fuel()
		totalFuel += fuel
		if fuel > 0 {
			fuelDataPoints++
		}

		totalCost += t.Cost()
		speedSum += t.AverageSpeed.Float()
		maxSpeed = math.Max(maxSpeed, t.MaxSpeed.Float())

		if name := strings.TrimSpace(t.DriverName); name != "" && !seen[name] {
			seen[name] = true
			drivers = append(drivers, name)
		}
	}

	e := models.VehicleEconomics{
		VehicleCode:   v.Code,
		VehicleName:   v.Name,
		VehicleSPZ:    v.SPZ,
		BranchName:    v.BranchName,
		TotalTrips:    len(trips),
		TotalDistance: totalDistance,
		TotalFuel:     totalFuel,
		TotalCost:     totalCost,
		CostPerKm:     ratio(totalCost, totalDistance),
		MaxSpeed:      maxSpeed,
		Drivers:       drivers,
		HasFuelData:   fuelDataPoints > 0,
	}
	if len(trips) > 0 {
		e.AvgSpeed = roundHalfUp(speedSum / float64(len(trips)))
	}
	if e.HasFuelData && totalDistance > 0 {
		per100 := ratio(totalFuel, totalDistance) * 100
		e.FuelPer100km = &per100
	}
	return e
}

// ComputeDailyUsage buckets one vehicle's fuel, distance and trip count by
// start date, oldest first.
func ComputeDailyUsage(trips []models.Trip) []models.DailyUsagePoint {
	byDate := make(map[string]*models.DailyUsagePoint)
	for _, t := range trips {
		date, ok := tripDate(t.StartTime)
		if !ok {
			continue
		}
		p, ok := byDate[date]
		if !ok {
			p = &models.DailyUsagePoint{Date: date}
			byDate[date] = p
		}
		p.Fuel += t.Fuel()
		p.Distance += t.TotalDistance.Float()
		p.Trips++
	}

	points := make([]models.DailyUsagePoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
