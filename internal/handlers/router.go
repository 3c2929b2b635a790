package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ukydev/fleet-insights/internal/middleware"
	"github.com/ukydev/fleet-insights/internal/proxy"
)

// RouterConfig wires the handlers into one router.
type RouterConfig struct {
	Analytics *AnalyticsHandler
	Insights  *InsightsHandler
	Chat      *ChatHandler
	// Gateway serves /api/v1/*; nil disables the proxy.
	Gateway http.Handler

	Limiter           *middleware.RateLimitMiddleware
	InsightRateLimit  int
	InsightRateWindow int // seconds

	ChatLimiter    *middleware.RateLimitMiddleware
	ChatRateLimit  int
	ChatRateWindow int // seconds
}

// NewRouter registers every route.
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.Gateway != nil {
		r.PathPrefix(proxy.Prefix + "/").Handler(cfg.Gateway)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CORS)

	a := cfg.Analytics
	api.HandleFunc("/groups", a.Groups).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/drivers", a.Drivers).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/health", a.Health).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/fuel", a.Fuel).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/alerts", a.Alerts).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/status", a.Status).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/groups/{group}/report.xlsx", a.Report).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/vehicles/{code}/economics", a.Economics).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/vehicles/{code}/positions", a.Positions).Methods(http.MethodGet, http.MethodOptions)

	var generate http.Handler = http.HandlerFunc(cfg.Insights.Generate)
	if cfg.Limiter != nil && cfg.InsightRateLimit > 0 {
		generate = cfg.Limiter.RateLimit(cfg.InsightRateLimit, cfg.InsightRateWindow)(generate)
	}
	api.Handle("/insights", generate).Methods(http.MethodPost, http.MethodOptions)

	if cfg.Chat != nil {
		var chat http.Handler = http.HandlerFunc(cfg.Chat.Chat)
		if cfg.ChatLimiter != nil && cfg.ChatRateLimit > 0 {
			chat = cfg.ChatLimiter.RateLimit(cfg.ChatRateLimit, cfg.ChatRateWindow)(chat)
		}
		api.Handle("/chat", chat).Methods(http.MethodPost, http.MethodOptions)
	}

	return r
}
