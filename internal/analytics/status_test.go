package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-insights/internal/models"
)

func speed(kmh float64) func(*models.Vehicle) {
	return func(v *models.Vehicle) { v.Speed = models.Number(kmh) }
}

func inactive(v *models.Vehicle) { v.IsActive = false }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		vehicle  models.Vehicle
		expected models.VehicleState
	}{
		{"moving", newVehicle("V", "V", speed(40)), models.StateActive},
		{"moving but not reporting", newVehicle("V", "V", speed(5), inactive), models.StateActive},
		{"stopped and reporting", newVehicle("V", "V"), models.StateIdle},
		{"stopped and silent", newVehicle("V", "V", inactive), models.StateOffline},
		{"NaN speed", newVehicle("V", "V", speed(math.NaN())), models.StateIdle},
		{"negative speed", newVehicle("V", "V", speed(-3), inactive), models.StateOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.vehicle))
		})
	}
}

func TestCountStates(t *testing.T) {
	c := CountStates([]models.Vehicle{
		newVehicle("A", "A", speed(50)),
		newVehicle("B", "B"),
		newVehicle("C", "C", inactive),
		newVehicle("D", "D", inactive),
	})
	assert.Equal(t, StateCounts{Total: 4, Active: 1, Idle: 1, Offline: 2}, c)
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		ago      time.Duration
		expected string
	}{
		{15 * time.Minute, "15m ago"},
		{59*time.Minute + 59*time.Second, "59m ago"},
		{3*time.Hour + 10*time.Minute, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{-time.Hour, "0m ago"},
	}

	for _, tt := range tests {
		ts := testNow.Add(-tt.ago).Format(time.RFC3339)
		assert.Equal(t, tt.expected, FormatTimeSince(ts, testNow))
	}
	assert.Equal(t, "", FormatTimeSince("never", testNow))
}

func TestGenerateAlerts(t *testing.T) {
	vehicles := []models.Vehicle{
		newVehicle("FAST", "Fast", speed(125)),
		newVehicle("OFF", "Off", inactive),
		newVehicle("IDLE", "Idle", lastSeen(3*time.Hour)),
		newVehicle("FRESH", "Fresh", lastSeen(time.Hour)),
		newVehicle("LIMIT", "Limit", speed(120)),
	}

	alerts := GenerateAlerts(vehicles, testNow)
	require.Len(t, alerts, 3)

	assert.Equal(t, models.AlertSpeeding, alerts[0].Kind)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "Speeding detected: 125 km/h", alerts[0].Message)
	assert.Equal(t, "FAST", alerts[0].VehicleCode)

	assert.Equal(t, models.AlertOffline, alerts[1].Kind)
	assert.Equal(t, models.SeverityMedium, alerts[1].Severity)

	assert.Equal(t, models.AlertIdle, alerts[2].Kind)
	assert.Equal(t, models.SeverityLow, alerts[2].Severity)
	assert.Equal(t, "Idle for 3+ hours", alerts[2].Message)
	assert.Equal(t, "3h ago", alerts[2].Time)
}

func TestGenerateAlerts_OfflineSpeederRaisesBoth(t *testing.T) {
	alerts := GenerateAlerts([]models.Vehicle{
		newVehicle("V", "V", speed(150), inactive),
	}, testNow)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertSpeeding, alerts[0].Kind)
	assert.Equal(t, models.AlertOffline, alerts[1].Kind)
}

func TestGenerateAlerts_TruncatedInVehicleOrder(t *testing.T) {
	var vehicles []models.Vehicle
	for i := 0; i < 4; i++ {
		vehicles = append(vehicles, newVehicle(fmt.Sprintf("OFF%d", i), "Off", inactive))
	}
	vehicles = append(vehicles,
		newVehicle("LOW", "Low", lastSeen(5*time.Hour)),
		newVehicle("FAST", "Fast", speed(180)),
	)

	alerts := GenerateAlerts(vehicles, testNow)
	require.Len(t, alerts, MaxAlerts)
	for i := 0; i < 4; i++ {
		assert.Equal(t, models.AlertOffline, alerts[i].Kind)
	}
	assert.Equal(t, "LOW", alerts[4].VehicleCode, "no reordering by severity")

	all := DetectAlerts(vehicles, testNow)
	require.Len(t, all, 6)
	assert.Equal(t, "FAST", all[5].VehicleCode)
}

func TestGenerateAlerts_Empty(t *testing.T) {
	alerts := GenerateAlerts(nil, testNow)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
