package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/insights"
	"github.com/ukydev/fleet-insights/internal/models"
)

// ChatHandler serves the fleet assistant.
type ChatHandler struct {
	service *insights.Service
	source  FleetSource
	now     func() time.Time
}

// NewChatHandler creates a chat handler. service may be nil when no API key
// is configured; source is only used for requests that name a group.
func NewChatHandler(service *insights.Service, source FleetSource) *ChatHandler {
	return &ChatHandler{service: service, source: source, now: time.Now}
}

// fleetContext builds the chat context of a group over the default period.
func (h *ChatHandler) fleetContext(r *http.Request, group string) (map[string]any, error) {
	now := h.now()
	period, err := analytics.ParsePeriod("", "", now)
	if err != nil {
		return nil, err
	}
	vehicles, err := h.source.Vehicles(r.Context(), group)
	if err != nil {
		return nil, err
	}
	trips, err := h.source.FleetTrips(r.Context(), vehicles, period.Start(), period.End())
	if err != nil {
		return nil, err
	}
	return analytics.ChatContext(vehicles, analytics.FilterTrips(trips, period.Filter(nil)), now), nil
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.service == nil || h.service.Generator == nil {
		http.Error(w, "AI chat is not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInsightBody))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if len(req.FleetContext) == 0 && req.Group != "" && h.source != nil {
		req.FleetContext, err = h.fleetContext(r, req.Group)
		if err != nil {
			upstreamError(w, r, err)
			return
		}
	}

	resp, err := h.service.Chat(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, insights.ErrEmptyConversation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, insights.ErrNotConfigured):
			http.Error(w, "AI chat is not configured", http.StatusServiceUnavailable)
		default:
			log.WithError(err).WithField("group", req.Group).Error("Failed to answer chat message")
			http.Error(w, "Failed to answer chat message", http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
