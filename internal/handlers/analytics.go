package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/models"
	"github.com/ukydev/fleet-insights/internal/report"
	"github.com/ukydev/fleet-insights/internal/upstream"
)

// FleetSource provides vehicles and trips from the GPS API.
type FleetSource interface {
	Groups(ctx context.Context) ([]models.Group, error)
	Vehicles(ctx context.Context, groupCode string) ([]models.Vehicle, error)
	Vehicle(ctx context.Context, code string) (*models.Vehicle, error)
	Trips(ctx context.Context, code string, from, to time.Time) ([]models.Trip, error)
	FleetTrips(ctx context.Context, vehicles []models.Vehicle, from, to time.Time) ([]models.TripWithVehicle, error)
	PositionHistory(ctx context.Context, codes []string, from, to time.Time) ([]models.VehiclePositions, error)
}

// AnalyticsHandler serves the fleet analytics endpoints.
type AnalyticsHandler struct {
	source FleetSource
	now    func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(source FleetSource) *AnalyticsHandler {
	return &AnalyticsHandler{source: source, now: time.Now}
}

// DriversResponse is returned by GET /api/groups/{group}/drivers.
type DriversResponse struct {
	Period  analytics.Period     `json:"period"`
	Drivers []models.DriverStats `json:"drivers"`
	Digest  map[string]any       `json:"digest"`
}

// HealthResponse is returned by GET /api/groups/{group}/health.
type HealthResponse struct {
	Period   analytics.Period          `json:"period"`
	Summary  models.FleetHealthSummary `json:"summary"`
	Vehicles []models.VehicleHealth    `json:"vehicles"`
	Digest   map[string]any            `json:"digest"`
}

// FuelResponse is returned by GET /api/groups/{group}/fuel.
type FuelResponse struct {
	Period   analytics.Period        `json:"period"`
	Summary  models.FuelSummary      `json:"summary"`
	Vehicles []models.VehicleFuelRow `json:"vehicles"`
	Daily    []models.DailyFuelPoint `json:"daily"`
	Digest   map[string]any          `json:"digest"`
}

// VehicleState pairs a vehicle with its classified state.
type VehicleState struct {
	Code  string              `json:"code"`
	Name  string              `json:"name"`
	SPZ   string              `json:"spz"`
	State models.VehicleState `json:"state"`
	Speed float64             `json:"speed"`
	Seen  string              `json:"lastSeen"`
}

// StatusResponse is returned by GET /api/groups/{group}/status.
type StatusResponse struct {
	Counts   analytics.StateCounts `json:"counts"`
	Vehicles []VehicleState        `json:"vehicles"`
	Alerts   []models.Alert        `json:"alerts"`
	Digest   map[string]any        `json:"digest"`
}

// EconomicsResponse is returned by GET /api/vehicles/{code}/economics.
type EconomicsResponse struct {
	Period    analytics.Period         `json:"period"`
	Economics models.VehicleEconomics  `json:"economics"`
	Daily     []models.DailyUsagePoint `json:"daily"`
}

// PositionsResponse is returned by GET /api/vehicles/{code}/positions.
type PositionsResponse struct {
	Period    analytics.Period       `json:"period"`
	Summary   models.RouteSummary    `json:"summary"`
	Positions []models.PositionPoint `json:"positions"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// upstreamError maps a GPS API error to a status code.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, upstream.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	log.WithError(err).WithField("path", r.URL.Path).Error("Upstream request failed")
	http.Error(w, "Upstream request failed", http.StatusBadGateway)
}

// fleet loads the selected vehicles of a group and their trips in the period.
func (h *AnalyticsHandler) fleet(r *http.Request, withTrips bool) ([]models.Vehicle, []models.TripWithVehicle, analytics.Period, error) {
	period, err := parsePeriod(r, h.now())
	if err != nil {
		return nil, nil, analytics.Period{}, err
	}
	filter := period.Filter(parseVehicleCodes(r))

	vehicles, err := h.source.Vehicles(r.Context(), mux.Vars(r)["group"])
	if err != nil {
		return nil, nil, period, err
	}
	vehicles = analytics.FilterVehicles(vehicles, filter)
	if !withTrips {
		return vehicles, nil, period, nil
	}

	trips, err := h.source.FleetTrips(r.Context(), vehicles, period.Start(), period.End())
	if err != nil {
		return nil, nil, period, err
	}
	return vehicles, analytics.FilterTrips(trips, filter), period, nil
}

func (h *AnalyticsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, analytics.ErrBadPeriod) {
		http.Error(w, "Invalid from/to, expected YYYY-MM-DD with from <= to", http.StatusBadRequest)
		return
	}
	upstreamError(w, r, err)
}

// Groups lists the fleet groups.
func (h *AnalyticsHandler) Groups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.source.Groups(r.Context())
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// Drivers returns the driver ranking of a group.
func (h *AnalyticsHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	_, trips, period, err := h.fleet(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats := analytics.ComputeDriverStats(trips)
	writeJSON(w, http.StatusOK, DriversResponse{
		Period:  period,
		Drivers: stats,
		Digest:  analytics.DriversDigest(stats),
	})
}

// Health returns per vehicle health and the fleet summary.
func (h *AnalyticsHandler) Health(w http.ResponseWriter, r *http.Request) {
	vehicles, trips, period, err := h.fleet(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	health := analytics.ComputeVehicleHealth(vehicles, trips, h.now())
	summary := analytics.ComputeFleetHealthSummary(health)
	writeJSON(w, http.StatusOK, HealthResponse{
		Period:   period,
		Summary:  summary,
		Vehicles: health,
		Digest:   analytics.HealthDigest(summary, health),
	})
}

// Fuel returns fleet fuel totals, per vehicle rows and daily points.
func (h *AnalyticsHandler) Fuel(w http.ResponseWriter, r *http.Request) {
	_, trips, period, err := h.fleet(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	summary := analytics.ComputeFuelSummary(trips)
	rows := analytics.ComputeVehicleFuelRows(trips)
	writeJSON(w, http.StatusOK, FuelResponse{
		Period:   period,
		Summary:  summary,
		Vehicles: rows,
		Daily:    analytics.ComputeDailyFuel(trips),
		Digest:   analytics.FuelDigest(summary, rows),
	})
}

// Alerts returns the current alerts of a group.
func (h *AnalyticsHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	vehicles, _, _, err := h.fleet(r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.GenerateAlerts(vehicles, h.now()))
}

// Status classifies every vehicle of a group.
func (h *AnalyticsHandler) Status(w http.ResponseWriter, r *http.Request) {
	vehicles, _, _, err := h.fleet(r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := h.now()
	counts := analytics.CountStates(vehicles)
	alerts := analytics.GenerateAlerts(vehicles, now)

	states := make([]VehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		states = append(states, VehicleState{
			Code:  v.Code,
			Name:  v.Name,
			SPZ:   v.SPZ,
			State: analytics.Classify(v),
			Speed: analytics.EffectiveSpeed(v),
			Seen:  analytics.FormatTimeSince(v.LastPositionTimestamp, now),
		})
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Counts:   counts,
		Vehicles: states,
		Alerts:   alerts,
		Digest:   analytics.DashboardDigest(counts, alerts),
	})
}

// Economics summarises the trips of one vehicle.
func (h *AnalyticsHandler) Economics(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	code := mux.Vars(r)["code"]

	vehicle, err := h.source.Vehicle(r.Context(), code)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	trips, err := h.source.Trips(r.Context(), code, period.Start(), period.End())
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EconomicsResponse{
		Period:    period,
		Economics: analytics.ComputeVehicleEconomics(*vehicle, trips),
		Daily:     analytics.ComputeDailyUsage(trips),
	})
}

// Report streams the XLSX workbook of a group.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	vehicles, trips, period, err := h.fleet(r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f, err := report.Build(report.FromFleet(vehicles, trips, h.now()))
	if err != nil {
		log.WithError(err).Error("Failed to build report")
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename(mux.Vars(r)["group"], period.From, period.To))
	if _, err := f.WriteTo(w); err != nil {
		log.WithError(err).Error("Failed to write report")
	}
}

// Positions returns the drawable position history of one vehicle.
func (h *AnalyticsHandler) Positions(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r, h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	code := mux.Vars(r)["code"]

	history, err := h.source.PositionHistory(r.Context(), []string{code}, period.Start(), period.End())
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	var points []models.PositionPoint
	for _, vp := range history {
		if vp.VehicleCode == code || (vp.VehicleCode == "" && len(history) == 1) {
			points = vp.Positions
			break
		}
	}
	writeJSON(w, http.StatusOK, PositionsResponse{
		Period:    period,
		Summary:   analytics.SummarizeRoute(code, points),
		Positions: analytics.ValidPositions(points),
	})
}
