package analytics

import (
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

// TripFilter carries the request-scoped selection: vehicle codes and an
// inclusive date range. Zero values select everything.
type TripFilter struct {
	VehicleCodes []string
	From         time.Time
	To           time.Time
}

func (f TripFilter) codeSet() map[string]bool {
	if len(f.VehicleCodes) == 0 {
		return nil
	}
	set := make(map[string]bool, len(f.VehicleCodes))
	for _, c := range f.VehicleCodes {
		set[c] = true
	}
	return set
}

func (f TripFilter) inRange(date string) bool {
	if !f.From.IsZero() && date < f.From.Format("2006-01-02") {
		return false
	}
	if !f.To.IsZero() && date > f.To.Format("2006-01-02") {
		return false
	}
	return true
}

// FilterTrips keeps trips of the selected vehicles whose start date falls in
// the range. Trips without a start date only pass when no range is set.
func FilterTrips(trips []models.TripWithVehicle, f TripFilter) []models.TripWithVehicle {
	codes := f.codeSet()
	ranged := !f.From.IsZero() || !f.To.IsZero()
	out := make([]models.TripWithVehicle, 0, len(trips))
	for _, t := range trips {
		if codes != nil && !codes[t.VehicleCode] {
			continue
		}
		if ranged {
			date, ok := tripDate(t.StartTime)
			if !ok || !f.inRange(date) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// FilterVehicles keeps the selected vehicles, all of them when no codes are
// given.
func FilterVehicles(vehicles []models.Vehicle, f TripFilter) []models.Vehicle {
	codes := f.codeSet()
	if codes == nil {
		return vehicles
	}
	out := make([]models.Vehicle, 0, len(codes))
	for _, v := range vehicles {
		if codes[v.Code] {
			out = append(out, v)
		}
	}
	return out
}
