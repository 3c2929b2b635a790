package analytics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-insights/internal/models"
)

func TestDriversDigest(t *testing.T) {
	var trips []models.TripWithVehicle
	for i := 0; i < 8; i++ {
		trips = append(trips, newTrip(fmt.Sprintf("Driver %d", i), withDistance(10), withWaiting(fmt.Sprintf("00:%02d:00", i*5))))
	}
	stats := ComputeDriverStats(trips)

	d := DriversDigest(stats)
	assert.Equal(t, 8, d["driverCount"])
	assert.Len(t, d["topDrivers"], 5)
	assert.Len(t, d["bottomDrivers"], 3)

	bottom := d["bottomDrivers"].([]map[string]any)
	assert.Equal(t, "Driver 7", bottom[0]["name"])

	_, err := json.Marshal(d)
	require.NoError(t, err)
}

func TestDigests_EmptyInputsMarshal(t *testing.T) {
	payloads := []map[string]any{
		DriversDigest(nil),
		HealthDigest(ComputeFleetHealthSummary(nil), nil),
		FuelDigest(ComputeFuelSummary(nil), nil),
		DashboardDigest(CountStates(nil), nil),
	}
	for _, p := range payloads {
		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "NaN")
	}
	assert.Equal(t, 0.0, payloads[0]["avgScore"])
	assert.Equal(t, 0.0, payloads[0]["medianScore"])
	assert.Equal(t, 0.0, payloads[2]["medianPer100km"])
}

func TestFuelDigest_Median(t *testing.T) {
	rows := []models.VehicleFuelRow{
		{VehicleName: "A", Distance: 100, Per100km: 12},
		{VehicleName: "B", Distance: 100, Per100km: 6},
		{VehicleName: "C", Distance: 100, Per100km: 8},
		{VehicleName: "D", Distance: 0, Per100km: 0},
	}
	d := FuelDigest(models.FuelSummary{}, rows)
	assert.Equal(t, 8.0, d["medianPer100km"])
	assert.Len(t, d["topConsumers"], 4)
}

func TestHealthDigest_WeakestVehicles(t *testing.T) {
	health := []models.VehicleHealth{
		{VehicleName: "A", HealthScore: 100, Status: models.HealthGood},
		{VehicleName: "B", HealthScore: 60, Status: models.HealthWarning},
		{VehicleName: "C", HealthScore: 10, Status: models.HealthCritical},
	}
	d := HealthDigest(ComputeFleetHealthSummary(health), health)

	weakest := d["weakestVehicles"].([]map[string]any)
	require.Len(t, weakest, 2)
	assert.Equal(t, "C", weakest[0]["name"])
	assert.Equal(t, "B", weakest[1]["name"])
	assert.Equal(t, 56.67, d["avgHealthScore"])
}

func TestChatContext(t *testing.T) {
	vehicles := []models.Vehicle{
		newVehicle("V1", "Truck 1", func(v *models.Vehicle) { v.Speed = 125 }),
		newVehicle("V2", "Van 2", func(v *models.Vehicle) { v.IsActive = false }),
	}
	trips := []models.TripWithVehicle{newTrip("Alice", withDistance(10), withSpeeds(60, 135))}

	ctx := ChatContext(vehicles, trips, testNow)

	dashboard := ctx["dashboard"].(map[string]any)
	assert.Equal(t, 1, dashboard["active"])
	assert.Equal(t, 1, dashboard["offline"])
	assert.Len(t, dashboard["alerts"], 2)

	health := ctx["health"].(map[string]any)
	assert.Equal(t, 2, health["totalVehicles"])

	list := ctx["vehicles"].([]map[string]any)
	require.Len(t, list, 2)
	assert.Equal(t, "V1", list[0]["code"])
	assert.Equal(t, "active", list[0]["state"])
	assert.Equal(t, 97, list[0]["healthScore"])
	assert.Equal(t, "offline", list[1]["state"])

	_, err := json.Marshal(ctx)
	require.NoError(t, err)
}

func TestChatContext_Empty(t *testing.T) {
	ctx := ChatContext(nil, nil, testNow)
	assert.Empty(t, ctx["vehicles"])
	raw, err := json.Marshal(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"vehicles":[]`)
}
