package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/fleet-insights/internal/analytics"
)

// parsePeriod reads the from and to query parameters.
func parsePeriod(r *http.Request, now time.Time) (analytics.Period, error) {
	q := r.URL.Query()
	return analytics.ParsePeriod(q.Get("from"), q.Get("to"), now)
}

// parseVehicleCodes reads the comma separated vehicles parameter.
func parseVehicleCodes(r *http.Request) []string {
	raw := r.URL.Query().Get("vehicles")
	if raw == "" {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
