package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ukydev/fleet-insights/internal/models"
)

func point(lat, lng, speed float64, ts string) models.PositionPoint {
	return models.PositionPoint{Lat: models.Number(lat), Lng: models.Number(lng), Speed: models.Number(speed), Time: ts}
}

func TestSummarizeRoute(t *testing.T) {
	points := []models.PositionPoint{
		point(50.0, 14.0, 0, "2024-01-09T08:00:00"),
		point(0, 0, 90, "2024-01-09T08:05:00"),
		point(50.1, 14.0, 60, "2024-01-09T08:10:00"),
		point(95, 14.0, 200, "2024-01-09T08:12:00"),
		point(50.2, 14.0, 81, "2024-01-09T08:20:00"),
	}

	s := SummarizeRoute("V1", points)
	assert.Equal(t, "V1", s.VehicleCode)
	assert.Equal(t, 3, s.Points)
	// 0.2 degrees of latitude is about 22.2 km.
	assert.InDelta(t, 22.2, s.DistanceKm, 0.05)
	assert.Equal(t, 81.0, s.MaxSpeed)
	assert.Equal(t, 47.0, s.AvgSpeed)
	assert.Equal(t, "2024-01-09T08:00:00", s.Start)
	assert.Equal(t, "2024-01-09T08:20:00", s.End)
}

func TestSummarizeRoute_Empty(t *testing.T) {
	s := SummarizeRoute("V1", []models.PositionPoint{point(0, 0, 10, "x")})
	assert.Equal(t, models.RouteSummary{VehicleCode: "V1"}, s)
}

func TestValidPositions_NegativeSpeedIgnored(t *testing.T) {
	s := SummarizeRoute("V1", []models.PositionPoint{point(49.0, 16.0, -5, "a")})
	assert.Equal(t, 1, s.Points)
	assert.Equal(t, 0.0, s.MaxSpeed)
	assert.Equal(t, 0.0, s.DistanceKm)
}
