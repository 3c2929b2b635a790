package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleet-insights/internal/config"
	"github.com/ukydev/fleet-insights/internal/db"
	"github.com/ukydev/fleet-insights/internal/handlers"
	"github.com/ukydev/fleet-insights/internal/insights"
	"github.com/ukydev/fleet-insights/internal/middleware"
	"github.com/ukydev/fleet-insights/internal/notify"
	"github.com/ukydev/fleet-insights/internal/proxy"
	"github.com/ukydev/fleet-insights/internal/upstream"
)

// newUpstream creates the GPS API client from configuration.
func newUpstream(cfg *config.Config) *upstream.Client {
	client := upstream.NewClient(cfg.APIBaseURL, cfg.APIUsername, cfg.APIPassword, cfg.UpstreamTimeout)
	client.Concurrency = cfg.TripFetchConcurrency
	return client
}

// newInsightService returns nil when no API key is configured. cache may be nil.
func newInsightService(cfg *config.Config, cache db.InsightCollection) *insights.Service {
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, AI insights disabled")
		return nil
	}
	gen := insights.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
	return insights.NewService(gen, cache, cfg.InsightCacheTTL)
}

// connectInsightCache returns nil when MongoDB is not configured or unreachable.
func connectInsightCache(cfg *config.Config) (*mongo.Client, db.InsightCollection) {
	if cfg.MongoURI == "" {
		log.Info("MONGO_URI not set, insight cache disabled")
		return nil, nil
	}
	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to MongoDB, insight cache disabled")
		return nil, nil
	}
	coll := &db.MongoCollection{Collection: client.Database(cfg.MongoDB).Collection("insights")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := coll.EnsureIndexes(ctx, cfg.InsightCacheTTL); err != nil {
		log.WithError(err).Warn("Failed to create insight cache indexes")
	}
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return client, coll
}

// buildRouter wires every handler for the given upstream and insight service.
func buildRouter(cfg *config.Config, source handlers.FleetSource, svc *insights.Service) (http.Handler, error) {
	gateway, err := proxy.New(cfg.APIBaseURL, cfg.APIUsername, cfg.APIPassword)
	if err != nil {
		return nil, err
	}
	return handlers.NewRouter(handlers.RouterConfig{
		Analytics:         handlers.NewAnalyticsHandler(source),
		Insights:          handlers.NewInsightsHandler(svc),
		Chat:              handlers.NewChatHandler(svc, source),
		Gateway:           gateway,
		Limiter:           middleware.NewRateLimitMiddleware(),
		InsightRateLimit:  cfg.InsightRateLimit,
		InsightRateWindow: cfg.InsightRateWindow,
		ChatLimiter:       middleware.NewRateLimitMiddleware(),
		ChatRateLimit:     cfg.ChatRateLimit,
		ChatRateWindow:    cfg.ChatRateWindow,
	}), nil
}

// startWatcher runs the alert watcher when MQTT and a group are configured.
// The returned func releases its connections.
func startWatcher(ctx context.Context, cfg *config.Config, source notify.VehicleLister) func() {
	if !cfg.AlertsEnabled() {
		log.Info("MQTT_BROKER or ALERT_GROUP not set, alert watcher disabled")
		return func() {}
	}
	publisher, err := notify.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to MQTT broker, alert watcher disabled")
		return func() {}
	}

	var dedup notify.Deduper = notify.NewMemoryDeduper(notify.DedupWindow)
	var redisDedup *notify.RedisDeduper
	if cfg.RedisAddr != "" {
		redisDedup, err = notify.NewRedisDeduper(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("Failed to connect to Redis, using in-process alert de-duplication")
		} else {
			dedup = redisDedup
		}
	}

	w := &notify.Watcher{
		Group:     cfg.AlertGroup,
		Interval:  cfg.AlertPollInterval,
		Source:    source,
		Dedup:     dedup,
		Publisher: publisher,
	}
	go w.Run(ctx)

	return func() {
		publisher.Close()
		if redisDedup != nil {
			redisDedup.Close()
		}
	}
}

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	if cfg.APIUsername == "" || cfg.APIPassword == "" {
		log.Warn("API_USERNAME or API_PASSWORD not set, upstream requests will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, cache := connectInsightCache(cfg)
	if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
	}

	source := newUpstream(cfg)
	router, err := buildRouter(cfg, source, newInsightService(cfg, cache))
	if err != nil {
		log.WithError(err).Fatal("Invalid API_BASE_URL")
	}

	stopWatcher := startWatcher(ctx, cfg, source)
	defer stopWatcher()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "upstream": cfg.APIBaseURL}).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
