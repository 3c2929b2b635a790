package analytics

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

// Alert thresholds.
const (
	AlertSpeedKmh  = 120.0
	IdleAlertHours = 2.0
	MaxAlerts      = 5
)

// hoursSince returns fractional hours since ts.
func hoursSince(ts string, now time.Time) (float64, bool) {
	t, ok := parseTimestamp(ts, now.Location())
	if !ok {
		return 0, false
	}
	return now.Sub(t).Hours(), true
}

// FormatTimeSince renders "15m ago", "3h ago" or "2d ago".
func FormatTimeSince(ts string, now time.Time) string {
	t, ok := parseTimestamp(ts, now.Location())
	if !ok {
		return ""
	}
	mins := int(math.Floor(now.Sub(t).Minutes()))
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return fmt.Sprintf("%dm ago", mins)
	}
	hours := mins / 60
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", hours/24)
}

// GenerateAlerts returns the first MaxAlerts alerts of DetectAlerts. There
// is no ordering by severity.
func GenerateAlerts(vehicles []models.Vehicle, now time.Time) []models.Alert {
	alerts := DetectAlerts(vehicles, now)
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	return alerts
}

// DetectAlerts checks every vehicle for speeding, offline and long idle
// conditions. Alerts keep vehicle order.
func DetectAlerts(vehicles []models.Vehicle, now time.Time) []models.Alert {
	alerts := []models.Alert{}

	for _, v := range vehicles {
		speed := EffectiveSpeed(v)
		since := FormatTimeSince(v.LastPositionTimestamp, now)
		newAlert := func(kind models.AlertKind, sev models.AlertSeverity, msg string) models.Alert {
			return models.Alert{
				VehicleCode: v.Code,
				VehicleName: v.Name,
				Kind:        kind,
				Severity:    sev,
				Message:     msg,
				Time:        since,
				TriggeredAt: now,
			}
		}

		if speed > AlertSpeedKmh {
			msg := fmt.Sprintf("Speeding detected: %s km/h", strconv.FormatFloat(speed, 'f', -1, 64))
			alerts = append(alerts, newAlert(models.AlertSpeeding, models.SeverityHigh, msg))
		}
		if !v.IsActive {
			alerts = append(alerts, newAlert(models.AlertOffline, models.SeverityMedium, "Vehicle offline, check connection"))
		}
		if speed == 0 && v.IsActive {
			if hours, ok := hoursSince(v.LastPositionTimestamp, now); ok && hours > IdleAlertHours {
				msg := fmt.Sprintf("Idle for %d+ hours", int(roundHalfUp(hours)))
				alerts = append(alerts, newAlert(models.AlertIdle, models.SeverityLow, msg))
			}
		}
	}
	return alerts
}
