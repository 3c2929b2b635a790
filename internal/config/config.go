package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the service configuration read from the environment.
type Config struct {
	// HTTP
	Port string

	// Upstream GPS API
	APIBaseURL           string
	APIUsername          string
	APIPassword          string
	UpstreamTimeout      time.Duration
	TripFetchConcurrency int

	// MongoDB insight cache
	MongoURI        string
	MongoDB         string
	InsightCacheTTL time.Duration

	// Generative language API
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	InsightRateLimit  int
	InsightRateWindow int // seconds
	ChatRateLimit     int
	ChatRateWindow    int // seconds

	// Redis alert de-duplication
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MQTT alert publishing
	MQTTBroker        string
	MQTTClientID      string
	AlertGroup        string
	AlertPollInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system env")
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		APIBaseURL:           strings.TrimRight(getEnv("API_BASE_URL", "https://a1.gpsguard.eu/api/v1"), "/"),
		APIUsername:          getEnv("API_USERNAME", ""),
		APIPassword:          getEnv("API_PASSWORD", ""),
		UpstreamTimeout:      getEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		TripFetchConcurrency: getEnvInt("TRIP_FETCH_CONCURRENCY", 8),
		MongoURI:             getEnv("MONGO_URI", ""),
		MongoDB:              getEnv("MONGO_DB", "fleet"),
		InsightCacheTTL:      getEnvDuration("INSIGHT_CACHE_TTL", 5*time.Minute),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		InsightRateLimit:     getEnvInt("INSIGHT_RATE_LIMIT", 20),
		InsightRateWindow:    getEnvInt("INSIGHT_RATE_WINDOW_SECONDS", 60),
		ChatRateLimit:        getEnvInt("CHAT_RATE_LIMIT", 10),
		ChatRateWindow:       getEnvInt("CHAT_RATE_WINDOW_SECONDS", 60),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		MQTTBroker:           getEnv("MQTT_BROKER", ""),
		MQTTClientID:         getEnv("MQTT_CLIENT_ID", "fleet-insights"),
		AlertGroup:           getEnv("ALERT_GROUP", ""),
		AlertPollInterval:    getEnvDuration("ALERT_POLL_INTERVAL", 30*time.Second),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
	}
}

// ConfigureLogging applies the log level and format to the standard logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

// AlertsEnabled reports whether the alert watcher has what it needs.
func (c *Config) AlertsEnabled() bool {
	return c.MQTTBroker != "" && c.AlertGroup != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
