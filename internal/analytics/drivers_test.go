package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-insights/internal/models"
)

func TestWaitingMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    models.WaitingTime
		expected int
	}{
		{"ten minutes", "00:10:00", 10},
		{"hours and minutes", "01:30:59", 90},
		{"no seconds", "02:05", 125},
		{"single part", "45", 0},
		{"numeric value", "600", 0},
		{"empty", "", 0},
		{"malformed minutes", "1:xx:00", 60},
		{"leading digits only", "3h:15m", 195},
		{"huge hours", "153722867280912931:00:00", 0},
		{"huge minutes", "01:99999999999999999999", 60},
		{"nine digit hours", "999999999:00", 59999999940},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, waitingMinutes(tt.input))
		})
	}
}

func TestComputeDriverStats_HugeWaitingTimeIgnored(t *testing.T) {
	stats := ComputeDriverStats([]models.TripWithVehicle{
		newTrip("Alice", withDistance(10), withSpeeds(60, 135), withWaiting("153722867280912931:00:00")),
	})
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].IdleMinutes)
	assert.Equal(t, 97, stats[0].Score)
}

func TestAggregateByDriver(t *testing.T) {
	trips := []models.TripWithVehicle{
		newTrip("Alice", withDistance(10), withSpeeds(40, 135), withFuel(1), withCost(20), withWaiting("00:07:00")),
		newTrip("  ", withDistance(100), withFuel(50)),
		newTrip("Bob", withDistance(5), withSpeeds(30, 90)),
		newTrip(" Alice ", withDistance(20), withSpeeds(50, 115), withFuel(2), withCost(30), withWaiting("00:03:30")),
		newTrip("Alice", withDistance(1), withSpeeds(20, 100)),
	}

	aggs := AggregateByDriver(trips)
	require.Len(t, aggs, 2)

	alice := aggs[0]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 3, alice.Trips)
	assert.InDelta(t, 31, alice.TotalDistance, 1e-9)
	assert.InDelta(t, 110, alice.SpeedSum, 1e-9)
	assert.Equal(t, 135.0, alice.MaxSpeed)
	assert.Equal(t, 4, alice.SpeedingEvents, "3 for >130 plus 1 for >110")
	assert.Equal(t, 10, alice.IdleMinutes)
	assert.InDelta(t, 3, alice.TotalFuel, 1e-9)
	assert.InDelta(t, 50, alice.TotalCost, 1e-9)
	assert.Equal(t, "Truck 1", alice.VehicleName)

	assert.Equal(t, "Bob", aggs[1].Name)
}

func TestComputeDriverStats_Empty(t *testing.T) {
	stats := ComputeDriverStats(nil)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)

	stats = ComputeDriverStats([]models.TripWithVehicle{})
	assert.Empty(t, stats)
}

func TestComputeDriverStats_WhitespaceDriverExcluded(t *testing.T) {
	stats := ComputeDriverStats([]models.TripWithVehicle{
		newTrip("  ", withDistance(10)),
		newTrip("\t", withDistance(10)),
		newTrip(""),
	})
	assert.Empty(t, stats)
}

func TestComputeDriverStats_Penalties(t *testing.T) {
	tests := []struct {
		name     string
		trip     models.TripWithVehicle
		expected int
	}{
		{"clean trip", newTrip("D", withDistance(10), withSpeeds(50, 90)), 100},
		{"idle ten minutes", newTrip("D", withWaiting("00:10:00")), 98},
		{"idle four minutes", newTrip("D", withWaiting("00:04:00")), 100},
		{"severe speeding", newTrip("D", withSpeeds(80, 135)), 97},
		{"moderate speeding", newTrip("D", withSpeeds(80, 115)), 99},
		{"exactly 110 is not speeding", newTrip("D", withSpeeds(80, 110)), 100},
		{"exactly 130 is moderate", newTrip("D", withSpeeds(80, 130)), 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeDriverStats([]models.TripWithVehicle{tt.trip})
			require.Len(t, stats, 1)
			assert.Equal(t, tt.expected, stats[0].Score)
		})
	}
}

func TestComputeDriverStats_FuelExcessPenalty(t *testing.T) {
	// Fleet: 25 L over 250 km = 0.10 L/km. Heavy is at 0.15 L/km (+50%).
	trips := []models.TripWithVehicle{
		newTrip("Light", withDistance(150), withFuel(10)),
		newTrip("Heavy", withDistance(100), withFuel(15)),
	}
	stats := ComputeDriverStats(trips)
	require.Len(t, stats, 2)

	assert.Equal(t, "Light", stats[0].Name)
	assert.Equal(t, 100, stats[0].Score)

	assert.Equal(t, "Heavy", stats[1].Name)
	assert.InDelta(t, 0.15, stats[1].FuelPerKm, 1e-9)
	assert.Equal(t, 98, stats[1].Score)
}

func TestDriverScore_FuelRule(t *testing.T) {
	assert.Equal(t, 98, DriverScore(0, 0, 0.15, 0.10))
	assert.Equal(t, 100, DriverScore(0, 0, 0.11, 0.10), "10% excess is below one step")
	assert.Equal(t, 100, DriverScore(0, 0, 0.05, 0.10), "below average is never penalised")
	assert.Equal(t, 100, DriverScore(0, 0, 0.50, 0), "no fleet average, no penalty")
}

func TestComputeDriverStats_ZeroDistance(t *testing.T) {
	stats := ComputeDriverStats([]models.TripWithVehicle{
		newTrip("Solo", withFuel(5)),
	})
	require.Len(t, stats, 1)
	assert.Equal(t, 0.0, stats[0].FuelPerKm)
	assert.Equal(t, 100, stats[0].Score)
}

func TestComputeDriverStats_ScoreBounds(t *testing.T) {
	var trips []models.TripWithVehicle
	for i := 0; i < 40; i++ {
		trips = append(trips, newTrip("Reckless", withSpeeds(100, 180), withWaiting("02:00:00")))
	}
	trips = append(trips, newTrip("Careful", withDistance(10)))

	stats := ComputeDriverStats(trips)
	require.Len(t, stats, 2)
	for _, s := range stats {
		assert.GreaterOrEqual(t, s.Score, 0)
		assert.LessOrEqual(t, s.Score, 100)
	}
	assert.Equal(t, "Careful", stats[0].Name)
	assert.Equal(t, 0, stats[1].Score)
}

func TestComputeDriverStats_StableRanking(t *testing.T) {
	trips := []models.TripWithVehicle{
		newTrip("First", withWaiting("00:50:00")),
		newTrip("Second", withWaiting("00:50:00")),
		newTrip("Best"),
	}

	stats := ComputeDriverStats(trips)
	require.Len(t, stats, 3)
	assert.Equal(t, "Best", stats[0].Name)
	assert.Equal(t, "First", stats[1].Name)
	assert.Equal(t, 90, stats[1].Score)
	assert.Equal(t, "Second", stats[2].Name)
	assert.Equal(t, 90, stats[2].Score)
}

func TestComputeDriverStats_AverageSpeedAndNonFinite(t *testing.T) {
	trips := []models.TripWithVehicle{
		newTrip("D", withSpeeds(40, 60), withDistance(math.NaN())),
		newTrip("D", withSpeeds(45, 70), withDistance(10)),
	}
	trips[0].FuelConsumed = &models.Measure{Value: models.Number(math.Inf(1))}

	stats := ComputeDriverStats(trips)
	require.Len(t, stats, 1)
	assert.Equal(t, 43.0, stats[0].AvgSpeed, "42.5 rounds half up")
	assert.Equal(t, 10.0, stats[0].TotalDistance)
	assert.Equal(t, 0.0, stats[0].TotalFuel)
	assert.False(t, math.IsNaN(stats[0].FuelPerKm))
}
