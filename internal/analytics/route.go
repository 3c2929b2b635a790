package analytics

import (
	"math"

	"github.com/ukydev/fleet-insights/internal/models"
)

const earthRadiusKm = 6371.0

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

// validFix rejects the 0,0 placeholder and out of range coordinates.
func validFix(p models.PositionPoint) bool {
	lat, lng := p.Lat.Float(), p.Lng.Float()
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidPositions drops fixes that cannot be drawn on a map.
func ValidPositions(points []models.PositionPoint) []models.PositionPoint {
	out := make([]models.PositionPoint, 0, len(points))
	for _, p := range points {
		if validFix(p) {
			out = append(out, p)
		}
	}
	return out
}

// SummarizeRoute measures a position history in recorded order. Distance
// is the sum of great-circle legs between valid fixes, rounded to 0.1 km.
func SummarizeRoute(code string, points []models.PositionPoint) models.RouteSummary {
	valid := ValidPositions(points)
	s := models.RouteSummary{VehicleCode: code, Points: len(valid)}
	if len(valid) == 0 {
		return s
	}

	var dist, speedSum float64
	for i, p := range valid {
		speed := math.Max(0, p.Speed.Float())
		speedSum += speed
		s.MaxSpeed = math.Max(s.MaxSpeed, speed)
		if i > 0 {
			prev := valid[i-1]
			dist += haversineKm(prev.Lat.Float(), prev.Lng.Float(), p.Lat.Float(), p.Lng.Float())
		}
	}
	s.DistanceKm = roundTo(dist, 1)
	s.AvgSpeed = roundHalfUp(speedSum / float64(len(valid)))
	s.Start = valid[0].Time
	s.End = valid[len(valid)-1].Time
	return s
}
