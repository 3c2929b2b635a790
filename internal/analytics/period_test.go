package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-insights/internal/models"
)

func TestParsePeriod(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := ParsePeriod("", "", testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), p.Start())
		assert.Equal(t, time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC), p.End())
		assert.Equal(t, DefaultPeriodDays, int(p.End().Sub(p.Start()).Hours()/24)+1)
	})

	t.Run("explicit to", func(t *testing.T) {
		p, err := ParsePeriod("", "2024-03-01", testNow)
		require.NoError(t, err)
		assert.Equal(t, "2024-02-24", p.From.Format(DateLayout))
	})

	t.Run("single day", func(t *testing.T) {
		p, err := ParsePeriod("2024-01-05", "2024-01-05", testNow)
		require.NoError(t, err)
		assert.Equal(t, p.From, p.To)
	})

	for _, tc := range []struct{ name, from, to string }{
		{"bad from", "yesterday", ""},
		{"bad to", "", "2024-13-01"},
		{"inverted", "2024-02-01", "2024-01-01"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePeriod(tc.from, tc.to, testNow)
			assert.ErrorIs(t, err, ErrBadPeriod)
		})
	}
}

func TestPeriod_JSONAndFilter(t *testing.T) {
	p, err := ParsePeriod("2024-01-08", "2024-01-09", testNow)
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2024-01-08","to":"2024-01-09"}`, string(raw))

	trips := FilterTrips([]models.TripWithVehicle{
		newTrip("Alice", withStart("2024-01-08T08:00:00")),
		newTrip("Alice", withStart("2024-01-10T08:00:00")),
		newTrip("Bob", withStart("2024-01-09T08:00:00"), withVehicle("V2", "Van 2")),
		newTrip("Alice", withStart("2024-01-09T23:30:00")),
	}, p.Filter([]string{"V1"}))
	require.Len(t, trips, 2)
	assert.Equal(t, "2024-01-08T08:00:00", trips[0].StartTime)
	assert.Equal(t, "2024-01-09T23:30:00", trips[1].StartTime)
}
