package analytics

import (
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type tripOpt func(*models.TripWithVehicle)

func newTrip(driver string, opts ...tripOpt) models.TripWithVehicle {
	t := models.TripWithVehicle{
		Trip: models.Trip{
			StartTime:  "2024-01-05T08:00:00Z",
			FinishTime: "2024-01-05T09:00:00Z",
			DriverName: driver,
		},
		VehicleCode: "V1",
		VehicleName: "Truck 1",
		VehicleSPZ:  "1AB 2345",
	}
	for _, o := range opts {
		o(&t)
	}
	return t
}

func withVehicle(code, name string) tripOpt {
	return func(t *models.TripWithVehicle) {
		t.VehicleCode = code
		t.VehicleName = name
	}
}

func withDistance(km float64) tripOpt {
	return func(t *models.TripWithVehicle) { t.TotalDistance = models.Number(km) }
}

func withSpeeds(avg, max float64) tripOpt {
	return func(t *models.TripWithVehicle) {
		t.AverageSpeed = models.Number(avg)
		t.MaxSpeed = models.Number(max)
	}
}

func withFuel(liters float64) tripOpt {
	return func(t *models.TripWithVehicle) { t.FuelConsumed = &models.Measure{Value: models.Number(liters)} }
}

func withCost(cost float64) tripOpt {
	return func(t *models.TripWithVehicle) { t.TripCost = &models.Measure{Value: models.Number(cost)} }
}

func withWaiting(w string) tripOpt {
	return func(t *models.TripWithVehicle) { t.TripWaitingTime = models.WaitingTime(w) }
}

func withStart(ts string) tripOpt {
	return func(t *models.TripWithVehicle) { t.StartTime = ts }
}

func newVehicle(code, name string, opts ...func(*models.Vehicle)) models.Vehicle {
	v := models.Vehicle{
		Code:                  code,
		Name:                  name,
		SPZ:                   "SPZ-" + code,
		IsActive:              true,
		Odometer:              1000,
		LastPositionTimestamp: testNow.Add(-time.Hour).Format(time.RFC3339),
	}
	for _, o := range opts {
		o(&v)
	}
	return v
}

func plainTrips(trips []models.TripWithVehicle) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		out = append(out, t.Trip)
	}
	return out
}
