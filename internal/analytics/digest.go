package analytics

import (
	"time"

	mstats "github.com/montanaflynn/stats"

	"github.com/ukydev/fleet-insights/internal/models"
)

// Digests reduce computed outputs to small plain-number payloads for the
// insights caller. Every number is finite and rounded to two decimals.

const digestListSize = 5

func r2(v float64) float64 {
	return roundTo(v, 2)
}

// median returns 0 for an empty input.
func median(values []float64) float64 {
	m, err := mstats.Median(values)
	if err != nil {
		return 0
	}
	return finite(m)
}

// DriversDigest summarises ranked driver stats.
func DriversDigest(stats []models.DriverStats) map[string]any {
	scoreSum, speeding, idle := 0, 0, 0
	scores := make([]float64, 0, len(stats))
	for _, s := range stats {
		scoreSum += s.Score
		scores = append(scores, float64(s.Score))
		speeding += s.SpeedingEvents
		idle += s.IdleMinutes
	}

	driver := func(s models.DriverStats) map[string]any {
		return map[string]any{
			"name":           s.Name,
			"score":          s.Score,
			"trips":          s.TotalTrips,
			"distanceKm":     r2(s.TotalDistance),
			"speedingPoints": s.SpeedingEvents,
			"idleMinutes":    s.IdleMinutes,
			"fuelPerKm":      r2(s.FuelPerKm),
		}
	}

	top := []map[string]any{}
	for i := 0; i < len(stats) && i < digestListSize; i++ {
		top = append(top, driver(stats[i]))
	}
	bottom := []map[string]any{}
	for i := len(stats) - 1; i >= digestListSize && i >= len(stats)-3; i-- {
		bottom = append(bottom, driver(stats[i]))
	}

	return map[string]any{
		"driverCount":         len(stats),
		"avgScore":            r2(ratio(float64(scoreSum), float64(len(stats)))),
		"medianScore":         r2(median(scores)),
		"totalSpeedingPoints": speeding,
		"totalIdleMinutes":    idle,
		"topDrivers":          top,
		"bottomDrivers":       bottom,
	}
}

// HealthDigest summarises fleet health and lists the weakest vehicles.
func HealthDigest(summary models.FleetHealthSummary, health []models.VehicleHealth) map[string]any {
	weakest := []map[string]any{}
	for i := len(health) - 1; i >= 0 && len(weakest) < digestListSize; i-- {
		h := health[i]
		if h.Status == models.HealthGood {
			break
		}
		weakest = append(weakest, map[string]any{
			"name":          h.VehicleName,
			"score":         h.HealthScore,
			"status":        string(h.Status),
			"speedingTrips": h.SpeedingEvents,
			"fuelPer100km":  r2(h.FuelEfficiency),
			"odometer":      r2(h.Odometer),
			"lastSeen":      h.LastSeen,
		})
	}

	return map[string]any{
		"totalVehicles":   summary.TotalVehicles,
		"activeNow":       summary.ActiveNow,
		"good":            summary.GoodHealth,
		"warning":         summary.WarningHealth,
		"critical":        summary.CriticalHealth,
		"avgHealthScore":  r2(summary.AvgHealthScore),
		"avgOdometer":     r2(summary.AvgOdometer),
		"weakestVehicles": weakest,
	}
}

// FuelDigest summarises fuel totals and the biggest consumers.
func FuelDigest(summary models.FuelSummary, rows []models.VehicleFuelRow) map[string]any {
	per100 := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Distance > 0 {
			per100 = append(per100, r.Per100km)
		}
	}

	consumers := []map[string]any{}
	for i := 0; i < len(rows) && i < digestListSize; i++ {
		r := rows[i]
		consumers = append(consumers, map[string]any{
			"name":     r.VehicleName,
			"trips":    r.Trips,
			"fuel":     r2(r.Fuel),
			"cost":     r2(r.Cost),
			"per100km": r2(r.Per100km),
		})
	}

	return map[string]any{
		"totalFuel":      r2(summary.TotalFuel),
		"totalCost":      r2(summary.TotalCost),
		"totalDistance":  r2(summary.TotalDistance),
		"avgPer100km":    r2(summary.AvgPer100km),
		"medianPer100km": r2(median(per100)),
		"totalTrips":     summary.TotalTrips,
		"topConsumers":   consumers,
	}
}

// DashboardDigest summarises live fleet state and current alerts.
func DashboardDigest(counts StateCounts, alerts []models.Alert) map[string]any {
	list := []map[string]any{}
	for _, a := range alerts {
		list = append(list, map[string]any{
			"vehicle":  a.VehicleName,
			"kind":     string(a.Kind),
			"severity": string(a.Severity),
			"message":  a.Message,
		})
	}
	return map[string]any{
		"totalVehicles": counts.Total,
		"active":        counts.Active,
		"idle":          counts.Idle,
		"offline":       counts.Offline,
		"alerts":        list,
	}
}

// chatVehicleLimit caps the vehicles listed in a chat context.
const chatVehicleLimit = 50

// ChatContext combines the dashboard and health digests with a short
// vehicle list so the model can answer questions about named vehicles.
func ChatContext(vehicles []models.Vehicle, trips []models.TripWithVehicle, now time.Time) map[string]any {
	health := ComputeVehicleHealth(vehicles, trips, now)
	scores := make(map[string]int, len(health))
	for _, h := range health {
		scores[h.VehicleCode] = h.HealthScore
	}

	list := []map[string]any{}
	for i, v := range vehicles {
		if i == chatVehicleLimit {
			break
		}
		list = append(list, map[string]any{
			"code":        v.Code,
			"name":        v.Name,
			"spz":         v.SPZ,
			"state":       string(Classify(v)),
			"speed":       r2(EffectiveSpeed(v)),
			"odometer":    r2(v.Odometer.Float()),
			"isActive":    v.IsActive,
			"healthScore": scores[v.Code],
			"lastSeen":    FormatTimeSince(v.LastPositionTimestamp, now),
		})
	}

	return map[string]any{
		"dashboard": DashboardDigest(CountStates(vehicles), GenerateAlerts(vehicles, now)),
		"health":    HealthDigest(ComputeFleetHealthSummary(health), health),
		"vehicles":  list,
	}
}
