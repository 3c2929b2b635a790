package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/config"
	"github.com/ukydev/fleet-insights/internal/models"
	"github.com/ukydev/fleet-insights/internal/upstream"
)

// fleetData is the input of every analytics command.
type fleetData struct {
	Vehicles []models.Vehicle
	Trips    []models.TripWithVehicle
}

// options are the persistent flags shared by every command.
type options struct {
	vehiclesFile string
	tripsFile    string
	group        string
	from         string
	to           string
	vehicleCodes []string
	output       string
	now          string
}

func (o *options) clock() (time.Time, error) {
	if o.now == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t, nil
}

// period resolves --from/--to with the same defaults as the HTTP API.
func (o *options) period(now time.Time) (analytics.Period, error) {
	return analytics.ParsePeriod(o.from, o.to, now)
}

func readJSONFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (o *options) liveClient() *upstream.Client {
	cfg := config.Load()
	client := upstream.NewClient(cfg.APIBaseURL, cfg.APIUsername, cfg.APIPassword, cfg.UpstreamTimeout)
	client.Concurrency = cfg.TripFetchConcurrency
	return client
}

// load reads vehicles and trips from files, or from the live API when
// --group is given. withTrips=false skips trip loading.
func (o *options) load(ctx context.Context, now time.Time, withTrips bool) (*fleetData, error) {
	period, err := o.period(now)
	if err != nil {
		return nil, err
	}
	filter := period.Filter(o.vehicleCodes)
	data := &fleetData{}

	switch {
	case o.group != "":
		client := o.liveClient()
		vehicles, err := client.Vehicles(ctx, o.group)
		if err != nil {
			return nil, fmt.Errorf("load vehicles: %w", err)
		}
		data.Vehicles = analytics.FilterVehicles(vehicles, filter)
		if withTrips {
			trips, err := client.FleetTrips(ctx, data.Vehicles, period.Start(), period.End())
			if err != nil {
				return nil, err
			}
			data.Trips = analytics.FilterTrips(trips, filter)
		}
	case o.vehiclesFile != "" || o.tripsFile != "":
		if o.vehiclesFile != "" {
			if err := readJSONFile(o.vehiclesFile, &data.Vehicles); err != nil {
				return nil, err
			}
			data.Vehicles = analytics.FilterVehicles(data.Vehicles, filter)
		}
		if withTrips && o.tripsFile != "" {
			if err := readJSONFile(o.tripsFile, &data.Trips); err != nil {
				return nil, err
			}
			data.Trips = analytics.FilterTrips(data.Trips, filter)
		}
	default:
		return nil, fmt.Errorf("either --group or --vehicles/--trips is required")
	}
	return data, nil
}

// vehicleTrips returns one vehicle and its plain trips.
func (o *options) vehicleTrips(ctx context.Context, code string, now time.Time) (models.Vehicle, []models.Trip, error) {
	if o.group == "" && o.vehiclesFile == "" && o.tripsFile == "" {
		period, err := o.period(now)
		if err != nil {
			return models.Vehicle{}, nil, err
		}
		client := o.liveClient()
		v, err := client.Vehicle(ctx, code)
		if err != nil {
			return models.Vehicle{}, nil, err
		}
		trips, err := client.Trips(ctx, code, period.Start(), period.End())
		return *v, trips, err
	}

	saved := o.vehicleCodes
	o.vehicleCodes = []string{code}
	defer func() { o.vehicleCodes = saved }()

	data, err := o.load(ctx, now, true)
	if err != nil {
		return models.Vehicle{}, nil, err
	}
	var v models.Vehicle
	if len(data.Vehicles) > 0 {
		v = data.Vehicles[0]
	} else {
		v.Code = code
	}
	trips := make([]models.Trip, 0, len(data.Trips))
	for _, t := range data.Trips {
		if v.Name == "" {
			v.Name, v.SPZ = t.VehicleName, t.VehicleSPZ
		}
		trips = append(trips, t.Trip)
	}
	return v, trips, nil
}
