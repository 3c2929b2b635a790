package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

// Health score thresholds.
const (
	GoodHealthScore    = 75
	WarningHealthScore = 50
)

// tripIndex groups trips per vehicle. Trips are keyed by vehicle code;
// trips that carry no code fall back to the vehicle display name.
type tripIndex struct {
	byCode map[string][]models.TripWithVehicle
	byName map[string][]models.TripWithVehicle
}

func indexTrips(trips []models.TripWithVehicle) tripIndex {
	idx := tripIndex{
		byCode: make(map[string][]models.TripWithVehicle),
		byName: make(map[string][]models.TripWithVehicle),
	}
	for _, t := range trips {
		if t.VehicleCode != "" {
			idx.byCode[t.VehicleCode] = append(idx.byCode[t.VehicleCode], t)
			continue
		}
		idx.byName[t.VehicleName] = append(idx.byName[t.VehicleName], t)
	}
	return idx
}

func (idx tripIndex) forVehicle(v models.Vehicle) []models.TripWithVehicle {
	var out []models.TripWithVehicle
	if v.Code != "" {
		out = append(out, idx.byCode[v.Code]...)
	}
	return append(out, idx.byName[v.Name]...)
}

// HealthStatusFor maps a score onto good/warning/critical.
func HealthStatusFor(score int) models.HealthStatus {
	switch {
	case score >= GoodHealthScore:
		return models.HealthGood
	case score >= WarningHealthScore:
		return models.HealthWarning
	default:
		return models.HealthCritical
	}
}

// hoursSinceSeen returns whole hours between the last position and now.
// Unparseable timestamps count as 0.
func hoursSinceSeen(ts string, now time.Time) int {
	t, ok := parseTimestamp(ts, now.Location())
	if !ok {
		return 0
	}
	return int(now.Sub(t).Hours())
}

// HealthScore applies the vehicle penalty rules to a starting score of 100.
func HealthScore(speedingTrips int, fuelEfficiency, odometer float64, hoursSinceLastSeen int) int {
	score := 100.0
	score -= float64(speedingTrips * 3)

	switch {
	case fuelEfficiency > 15:
		score -= 10
	case fuelEfficiency > 12:
		score -= 5
	}

	switch {
	case odometer > 500000:
		score -= 10
	case odometer > 300000:
		score -= 5
	}

	switch {
	case hoursSinceLastSeen > 48:
		score -= 15
	case hoursSinceLastSeen > 24:
		score -= 5
	}
	return clampScore(score)
}

// ComputeVehicleHealth scores every vehicle from its trips and static
// attributes. The result is sorted by score, highest first.
func ComputeVehicleHealth(vehicles []models.Vehicle, trips []models.TripWithVehicle, now time.Time) []models.VehicleHealth {
	idx := indexTrips(trips)
	out := make([]models.VehicleHealth, 0, len(vehicles))

	for _, v := range vehicles {
		vTrips := idx.forVehicle(v)

		var totalDistance, totalFuel, speedSum, maxSpeed float64
		speeding := 0
		for _, t := range vTrips {
			totalDistance += t.TotalDistance.Float()
			totalFuel += t.Fuel()
			speedSum += t.AverageSpeed.Float()
			ms := t.MaxSpeed.Float()
			maxSpeed = math.Max(maxSpeed, ms)
			if ms > SevereSpeedKmh {
				speeding++
			}
		}

		avgSpeed := 0.0
		if len(vTrips) > 0 {
			avgSpeed = speedSum / float64(len(vTrips))
		}
		efficiency := ratio(totalFuel, totalDistance) * 100
		odometer := v.Odometer.Float()
		score := HealthScore(speeding, efficiency, odometer, hoursSinceSeen(v.LastPositionTimestamp, now))

		out = append(out, models.VehicleHealth{
			VehicleCode:      v.Code,
			VehicleName:      v.Name,
			VehicleSPZ:       v.SPZ,
			IsActive:         v.IsActive,
			CurrentSpeed:     EffectiveSpeed(v),
			Odometer:         odometer,
			LastSeen:         v.LastPositionTimestamp,
			TotalTrips:       len(vTrips),
			TotalDistance:    totalDistance,
			AvgSpeed:         avgSpeed,
			MaxSpeedRecorded: maxSpeed,
			FuelEfficiency:   efficiency,
			SpeedingEvents:   speeding,
			HealthScore:      score,
			Status:           HealthStatusFor(score),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HealthScore > out[j].HealthScore
	})
	return out
}

// ComputeFleetHealthSummary reduces per-vehicle health into fleet totals.
func ComputeFleetHealthSummary(health []models.VehicleHealth) models.FleetHealthSummary {
	s := models.FleetHealthSummary{TotalVehicles: len(health)}
	scoreSum := 0
	for _, h := range health {
		if h.CurrentSpeed > 0 {
			s.ActiveNow++
		}
		switch h.Status {
		case models.HealthGood:
			s.GoodHealth++
		case models.HealthWarning:
			s.WarningHealth++
		case models.HealthCritical:
			s.CriticalHealth++
		}
		scoreSum += h.HealthScore
		s.TotalOdometer += finite(h.Odometer)
	}
	s.AvgHealthScore = ratio(float64(scoreSum), float64(s.TotalVehicles))
	s.AvgOdometer = ratio(s.TotalOdometer, float64(s.TotalVehicles))
	return s
}
