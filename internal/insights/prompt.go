package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ukydev/fleet-insights/internal/models"
)

// MaxInsights caps how many cards are returned per request.
const MaxInsights = 4

var moduleFocus = map[models.InsightModule]string{
	models.InsightDashboard: "overall fleet status: how many vehicles are active, idle or offline and which alerts need attention",
	models.InsightDrivers:   "driver behaviour: safety scores, speeding events, idle time and fuel efficiency compared with the fleet",
	models.InsightHealth:    "vehicle health: low health scores, speeding history, high odometer readings and vehicles that stopped reporting",
	models.InsightFuel:      "fuel and cost: total consumption, cost per km, the heaviest consumers and daily trends",
}

var localeNames = map[string]string{
	"en": "English",
	"cs": "Czech",
}

// BuildPrompt renders the instruction sent to the model for one module.
func BuildPrompt(module models.InsightModule, data map[string]any, locale string) (string, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode insight data: %w", err)
	}

	lang, ok := localeNames[strings.ToLower(locale)]
	if !ok {
		lang = localeNames["en"]
	}

	var sb strings.Builder
	sb.WriteString("You are a fleet management analyst. ")
	fmt.Fprintf(&sb, "Analyse the following %s data and focus on %s.\n\n", module, moduleFocus[module])
	fmt.Fprintf(&sb, "Return at most %d insights as a JSON array. Each item must be an object with the fields ", MaxInsights)
	sb.WriteString(`"severity" (one of "info", "warning", "critical", "positive"), "title" (max 60 characters) and "description" (one or two sentences with concrete numbers). `)
	fmt.Fprintf(&sb, "Write titles and descriptions in %s. Return only the JSON array.\n\n", lang)
	sb.WriteString("Data:\n")
	sb.Write(payload)
	return sb.String(), nil
}
