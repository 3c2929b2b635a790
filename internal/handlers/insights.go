package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/insights"
	"github.com/ukydev/fleet-insights/internal/models"
)

const maxInsightBody = 1 << 20

// InsightsHandler serves AI insight cards.
type InsightsHandler struct {
	service *insights.Service
}

// NewInsightsHandler creates a new insights handler. service may be nil when
// no API key is configured.
func NewInsightsHandler(service *insights.Service) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// Generate handles POST /api/insights.
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.service == nil || h.service.Generator == nil {
		http.Error(w, "AI insights are not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInsightBody))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.InsightRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Insights(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, insights.ErrInvalidModule), errors.Is(err, insights.ErrEmptyData):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, insights.ErrNotConfigured):
			http.Error(w, "AI insights are not configured", http.StatusServiceUnavailable)
		default:
			log.WithError(err).WithField("module", req.Module).Error("Failed to generate insights")
			http.Error(w, "Failed to generate insights", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
