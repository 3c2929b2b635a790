package analytics

import (
	"sort"

	"github.com/ukydev/fleet-insights/internal/models"
)

// ComputeFuelSummary sums fuel, cost and distance over all trips.
func ComputeFuelSummary(trips []models.TripWithVehicle) models.FuelSummary {
	var s models.FuelSummary
	for _, t := range trips {
		s.TotalFuel += t.Fuel()
		s.TotalCost += t.Cost()
		s.TotalDistance += t.TotalDistance.Float()
	}
	s.TotalTrips = len(trips)
	s.AvgPer100km = ratio(s.TotalFuel, s.TotalDistance) * 100
	return s
}

func vehicleKey(t models.TripWithVehicle) string {
	if t.VehicleCode != "" {
		return t.VehicleCode
	}
	return "name:" + t.VehicleName
}

// ComputeVehicleFuelRows groups fuel totals per vehicle, highest
// consumption first.
func ComputeVehicleFuelRows(trips []models.TripWithVehicle) []models.VehicleFuelRow {
	index := make(map[string]int)
	var rows []models.VehicleFuelRow

	for _, t := range trips {
		key := vehicleKey(t)
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, models.VehicleFuelRow{
				VehicleCode: t.VehicleCode,
				VehicleName: t.VehicleName,
				VehicleSPZ:  t.VehicleSPZ,
			})
		}
		r := &rows[i]
		r.Trips++
		r.Fuel += t.Fuel()
		r.Cost += t.Cost()
		r.Distance += t.TotalDistance.Float()
	}

	for i := range rows {
		rows[i].Per100km = ratio(rows[i].Fuel, rows[i].Distance) * 100
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Fuel > rows[j].Fuel
	})
	if rows == nil {
		rows = []models.VehicleFuelRow{}
	}
	return rows
}

// ComputeDailyFuel buckets fuel and cost by trip start date. Fuel is
// rounded to one decimal, cost to whole units.
func ComputeDailyFuel(trips []models.TripWithVehicle) []models.DailyFuelPoint {
	byDate := make(map[string]*models.DailyFuelPoint)
	for _, t := range trips {
		date, ok := tripDate(t.StartTime)
		if !ok {
			continue
		}
		p, ok := byDate[date]
		if !ok {
			p = &models.DailyFuelPoint{Date: date}
			byDate[date] = p
		}
		p.Fuel += t.Fuel()
		p.Cost += t.Cost()
	}

	points := make([]models.DailyFuelPoint, 0, len(byDate))
	for _, p := range byDate {
		points = append(points, models.DailyFuelPoint{
			Date: p.Date,
			Fuel: roundTo(p.Fuel, 1),
			Cost: roundHalfUp(p.Cost),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}
