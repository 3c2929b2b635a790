package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

// finite maps NaN and ±Inf to 0 so a bad upstream value never reaches a sum.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return finite(num / den)
}

func clampScore(score float64) int {
	return int(math.Max(0, math.Min(100, score)))
}

// roundHalfUp rounds .5 towards +Inf, the way dashboards display totals.
func roundHalfUp(v float64) float64 {
	return math.Floor(finite(v) + 0.5)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return roundHalfUp(v*p) / p
}

// maxLeadingDigits bounds leadingInt so minute totals cannot overflow.
const maxLeadingDigits = 9

// leadingInt parses the leading decimal digits of s. No digits, or more than
// maxLeadingDigits of them, gives 0.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end > maxLeadingDigits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// waitingMinutes converts "HH:MM[:SS]" into whole minutes. Seconds are
// ignored; values with fewer than two parts count as 0.
func waitingMinutes(w models.WaitingTime) int {
	if w == "" {
		return 0
	}
	parts := strings.Split(string(w), ":")
	if len(parts) < 2 {
		return 0
	}
	return leadingInt(parts[0])*60 + leadingInt(parts[1])
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTimestamp parses the upstream ISO timestamps. Values without a zone
// are read in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tripDate returns the YYYY-MM-DD prefix of a trip start time.
func tripDate(startTime string) (string, bool) {
	startTime = strings.TrimSpace(startTime)
	if len(startTime) < 10 {
		return "", false
	}
	date := startTime[:10]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date, true
}
