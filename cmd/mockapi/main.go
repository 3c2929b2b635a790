package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/models"
)

const timeLayout = "2006-01-02T15:04:05"

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64
	Lon float64
}

// City is a depot the synthetic vehicles operate around.
type City struct {
	Name string
	Location
}

var cities = []City{
	{"Praha", Location{Lat: 50.0755, Lon: 14.4378}},
	{"Brno", Location{Lat: 49.1951, Lon: 16.6068}},
	{"Ostrava", Location{Lat: 49.8209, Lon: 18.2625}},
	{"Plzeň", Location{Lat: 49.7384, Lon: 13.3736}},
	{"Olomouc", Location{Lat: 49.5938, Lon: 17.2509}},
	{"Liberec", Location{Lat: 50.7663, Lon: 15.0543}},
	{"České Budějovice", Location{Lat: 48.9745, Lon: 14.4743}},
	{"Hradec Králové", Location{Lat: 50.2092, Lon: 15.8328}},
}

var drivers = []string{
	"Jan Novák", "Petr Svoboda", "Eva Dvořáková", "Tomáš Černý", "Lucie Procházková",
	"Martin Kučera", "Jana Veselá", "Pavel Horák", "Karel Němec", "Lenka Marková",
}

var vehicleNames = []string{"Ford Transit", "Škoda Octavia", "VW Crafter", "Mercedes Sprinter", "Iveco Daily", "Renault Master"}

func jitterLocation(rng *rand.Rand, base Location, meters float64) Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLon := (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return Location{Lat: base.Lat + dLat, Lon: base.Lon + dLon}
}

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// simVehicle is a vehicle of the synthetic fleet.
type simVehicle struct {
	models.Vehicle
	home    City
	drivers []string
}

// Fleet is a deterministic synthetic fleet.
type Fleet struct {
	seed    int64
	groups  []models.Group
	byGroup map[string][]*simVehicle
	byCode  map[string]*simVehicle
	now     func() time.Time
}

// NewFleet builds size vehicles split over two groups.
func NewFleet(size int, seed int64, now func() time.Time) *Fleet {
	rng := rand.New(rand.NewSource(seed))
	f := &Fleet{
		seed: seed,
		groups: []models.Group{
			{Code: "CZ-EAST", Name: "Východ"},
			{Code: "CZ-WEST", Name: "Západ"},
		},
		byGroup: make(map[string][]*simVehicle),
		byCode:  make(map[string]*simVehicle),
		now:     now,
	}
	for i := 0; i < size; i++ {
		group := f.groups[i%len(f.groups)].Code
		home := cities[rng.Intn(len(cities))]
		code := fmt.Sprintf("V%03d", i+1)
		v := &simVehicle{
			Vehicle: models.Vehicle{
				Code:       code,
				Name:       fmt.Sprintf("%s %d", vehicleNames[rng.Intn(len(vehicleNames))], i+1),
				SPZ:        fmt.Sprintf("%d%c%c %04d", 1+rng.Intn(9), 'A'+rng.Intn(26), 'A'+rng.Intn(26), rng.Intn(10000)),
				BranchName: home.Name,
				Odometer:   models.Number(20000 + rng.Intn(330000)),
			},
			home:    home,
			drivers: []string{drivers[rng.Intn(len(drivers))], drivers[rng.Intn(len(drivers))]},
		}
		f.byGroup[group] = append(f.byGroup[group], v)
		f.byCode[code] = v
	}
	return f
}

// rngFor returns a generator that is stable for a vehicle and key.
func (f *Fleet) rngFor(code, key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(code))
	h.Write([]byte{0})
	h.Write([]byte(key))
	return rand.New(rand.NewSource(f.seed ^ int64(h.Sum64())))
}

// live fills in the current state. The state is stable within a minute.
func (f *Fleet) live(v *simVehicle) models.Vehicle {
	now := f.now()
	rng := f.rngFor(v.Code, now.Truncate(time.Minute).Format(timeLayout))
	out := v.Vehicle

	switch r := rng.Float64(); {
	case r < 0.15:
		out.IsActive = false
		out.LastPositionTimestamp = now.Add(-time.Duration(3+rng.Intn(72)) * time.Hour).Format(timeLayout)
	case r < 0.45:
		out.IsActive = true
		out.LastPositionTimestamp = now.Add(-time.Duration(rng.Intn(300)) * time.Minute).Format(timeLayout)
	default:
		out.IsActive = true
		out.Speed = models.Number(round(20+rng.Float64()*115, 0))
		out.LastPositionTimestamp = now.Add(-time.Duration(rng.Intn(60)) * time.Second).Format(timeLayout)
	}
	pos := jitterLocation(rng, v.home.Location, 15000)
	out.LastPosition = models.Position{
		Latitude:  strconv.FormatFloat(pos.Lat, 'f', 6, 64),
		Longitude: strconv.FormatFloat(pos.Lon, 'f', 6, 64),
	}
	return out
}

// Trips generates the trips of a vehicle whose start falls in [from, to].
func (f *Fleet) Trips(code string, from, to time.Time) []models.Trip {
	v, ok := f.byCode[code]
	if !ok {
		return nil
	}
	trips := []models.Trip{}
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for ; !day.After(to); day = day.AddDate(0, 0, 1) {
		rng := f.rngFor(code, day.Format("2006-01-02"))
		n := rng.Intn(4)
		clock := day.Add(time.Duration(6*60+rng.Intn(120)) * time.Minute)
		for i := 0; i < n; i++ {
			t := f.trip(rng, v, clock)
			start, _ := time.Parse(timeLayout, t.StartTime)
			finish, _ := time.Parse(timeLayout, t.FinishTime)
			clock = finish.Add(time.Duration(20+rng.Intn(120)) * time.Minute)
			if start.Before(from) || start.After(to) {
				continue
			}
			trips = append(trips, t)
		}
	}
	return trips
}

func (f *Fleet) trip(rng *rand.Rand, v *simVehicle, start time.Time) models.Trip {
	a := jitterLocation(rng, v.home.Location, 8000)
	b := jitterLocation(rng, v.home.Location, 40000)
	distance := round(haversineKm(a, b)*1.3+1, 1)
	avg := 35 + rng.Float64()*50
	maxSpeed := avg + 10 + rng.Float64()*60
	duration := time.Duration(distance / avg * float64(time.Hour))
	waiting := time.Duration(rng.Intn(45)) * time.Minute

	t := models.Trip{
		StartTime:     start.Format(timeLayout),
		FinishTime:    start.Add(duration + waiting).Format(timeLayout),
		StartAddress:  fmt.Sprintf("%s, %.4f %.4f", v.home.Name, a.Lat, a.Lon),
		FinishAddress: fmt.Sprintf("%.4f %.4f", b.Lat, b.Lon),
		TotalDistance: models.Number(distance),
		AverageSpeed:  models.Number(round(avg, 0)),
		MaxSpeed:      models.Number(round(maxSpeed, 0)),
		TripWaitingTime: models.WaitingTime(fmt.Sprintf("%02d:%02d:00",
			int(waiting.Hours()), int(waiting.Minutes())%60)),
		DriverName: v.drivers[rng.Intn(len(v.drivers))],
	}
	if rng.Float64() < 0.9 {
		fuel := round(distance*(6+rng.Float64()*6)/100, 2)
		t.FuelConsumed = &models.Measure{Value: models.Number(fuel), Unit: "l"}
		t.TripCost = &models.Measure{Value: models.Number(round(fuel*38.5, 0)), Unit: "CZK"}
	}
	return t
}

// fixesPerTrip is the number of recorded positions along one trip.
const fixesPerTrip = 6

// Positions generates GPS fixes along the trips of a vehicle in [from, to].
func (f *Fleet) Positions(code string, from, to time.Time) []models.PositionPoint {
	v, ok := f.byCode[code]
	if !ok {
		return nil
	}
	points := []models.PositionPoint{}
	for _, t := range f.Trips(code, from, to) {
		start, _ := time.Parse(timeLayout, t.StartTime)
		finish, _ := time.Parse(timeLayout, t.FinishTime)
		rng := f.rngFor(code, t.StartTime)
		a := jitterLocation(rng, v.home.Location, 8000)
		b := jitterLocation(rng, v.home.Location, 40000)
		step := finish.Sub(start) / (fixesPerTrip - 1)
		for i := 0; i < fixesPerTrip; i++ {
			frac := float64(i) / (fixesPerTrip - 1)
			speed := 0.0
			if i > 0 && i < fixesPerTrip-1 {
				speed = round(t.AverageSpeed.Float()*(0.7+rng.Float64()*0.6), 0)
			}
			points = append(points, models.PositionPoint{
				Lat:   models.Number(round(a.Lat+(b.Lat-a.Lat)*frac, 6)),
				Lng:   models.Number(round(a.Lon+(b.Lon-a.Lon)*frac, 6)),
				Speed: models.Number(speed),
				Time:  start.Add(time.Duration(i) * step).Format(timeLayout),
			})
		}
	}
	return points
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func parseTime(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	for _, layout := range []string{timeLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// basicAuth rejects requests without the configured credentials.
func basicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, p, ok := r.BasicAuth()
			if !ok || u != username || p != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="mock gps"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Router serves the GPS API paths under /api/v1.
func (f *Fleet) Router(username, password string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(basicAuth(username, password))

	api.HandleFunc("/groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.groups)
	}).Methods(http.MethodGet)

	api.HandleFunc("/vehicles/group/{code}", func(w http.ResponseWriter, r *http.Request) {
		list, ok := f.byGroup[mux.Vars(r)["code"]]
		if !ok {
			http.Error(w, "Group not found", http.StatusNotFound)
			return
		}
		out := make([]models.Vehicle, 0, len(list))
		for _, v := range list {
			out = append(out, f.live(v))
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
		writeJSON(w, out)
	}).Methods(http.MethodGet)

	api.HandleFunc("/vehicle/{code}", func(w http.ResponseWriter, r *http.Request) {
		v, ok := f.byCode[mux.Vars(r)["code"]]
		if !ok {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		writeJSON(w, f.live(v))
	}).Methods(http.MethodGet)

	api.HandleFunc("/vehicle/{code}/trips", func(w http.ResponseWriter, r *http.Request) {
		code := mux.Vars(r)["code"]
		if _, ok := f.byCode[code]; !ok {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return
		}
		now := f.now()
		to, err := parseTime(r.URL.Query().Get("to"), now)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		from, err := parseTime(r.URL.Query().Get("from"), to.AddDate(0, 0, -7))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, f.Trips(code, from, to))
	}).Methods(http.MethodGet)

	api.HandleFunc("/vehicles/history/{codes}", func(w http.ResponseWriter, r *http.Request) {
		now := f.now()
		to, err := parseTime(r.URL.Query().Get("to"), now)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		from, err := parseTime(r.URL.Query().Get("from"), to.AddDate(0, 0, -1))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := []models.VehiclePositions{}
		for _, code := range strings.Split(mux.Vars(r)["codes"], ",") {
			v, ok := f.byCode[code]
			if !ok {
				continue
			}
			out = append(out, models.VehiclePositions{
				VehicleCode: code,
				Name:        v.Name,
				Positions:   f.Positions(code, from, to),
			})
		}
		writeJSON(w, out)
	}).Methods(http.MethodGet)

	return r
}

func main() {
	fleetSize := 12
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			fleetSize = n
		}
	}
	seed := int64(42)
	if val := os.Getenv("MOCK_SEED"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			seed = n
		}
	}
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	fleet := NewFleet(fleetSize, seed, time.Now)
	router := fleet.Router(os.Getenv("API_USERNAME"), os.Getenv("API_PASSWORD"))

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"seed":       seed,
		"port":       port,
	}).Info("Mock GPS API listening")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.WithError(err).Fatal("Mock GPS API stopped")
	}
}
