package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ukydev/fleet-insights/internal/models"
)

// ParseInsights extracts insight cards from model output. Code fences and
// text around the JSON array are ignored. Cards without a title are dropped
// and unknown severities become info.
func ParseInsights(text string) ([]models.Insight, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in model output", ErrBadResponse)
	}

	var raw []struct {
		Severity    string `json:"severity"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	out := make([]models.Insight, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		sev := models.InsightSeverity(strings.ToLower(strings.TrimSpace(r.Severity)))
		if !models.IsValidInsightSeverity(sev) {
			sev = models.InsightInfo
		}
		out = append(out, models.Insight{
			Severity:    sev,
			Title:       title,
			Description: strings.TrimSpace(r.Description),
		})
		if len(out) == MaxInsights {
			break
		}
	}
	return out, nil
}
