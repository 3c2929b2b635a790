package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/db"
	"github.com/ukydev/fleet-insights/internal/models"
)

var (
	ErrNotConfigured = errors.New("insight generation is not configured")
	ErrInvalidModule = errors.New("invalid insight module")
	ErrEmptyData     = errors.New("insight data is empty")
	ErrEmptyResponse = errors.New("model returned no content")
	ErrBadResponse   = errors.New("model returned malformed insights")
)

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service generates insight cards and caches them.
type Service struct {
	Generator Generator
	Cache     db.InsightCollection
	TTL       time.Duration
	Now       func() time.Time
}

// NewService creates a service. cache may be nil to disable caching.
func NewService(gen Generator, cache db.InsightCollection, ttl time.Duration) *Service {
	return &Service{Generator: gen, Cache: cache, TTL: ttl, Now: time.Now}
}

// CacheKey hashes module, locale and data into a stable key. Map keys are
// sorted by encoding/json so equal payloads give equal keys.
func CacheKey(module models.InsightModule, locale string, data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode insight data: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(module))
	h.Write([]byte("|"))
	h.Write([]byte(locale))
	h.Write([]byte("|"))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Insights returns cards for the request, from cache when fresh.
func (s *Service) Insights(ctx context.Context, req models.InsightRequest) (*models.InsightResponse, error) {
	if s == nil || s.Generator == nil {
		return nil, ErrNotConfigured
	}
	if !models.IsValidInsightModule(req.Module) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModule, req.Module)
	}
	if len(req.Data) == 0 {
		return nil, ErrEmptyData
	}
	if req.Locale == "" {
		req.Locale = "en"
	}

	key, err := CacheKey(req.Module, req.Locale, req.Data)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(log.Fields{"module": req.Module, "locale": req.Locale, "cache_key": key[:12]})

	if s.Cache != nil {
		cached, err := s.Cache.FindInsight(ctx, key, s.now().Add(-s.TTL))
		switch {
		case err == nil:
			logger.Debug("Insight cache hit")
			return &models.InsightResponse{Insights: cached.Insights, Cached: true}, nil
		case !errors.Is(err, db.ErrCacheMiss):
			logger.WithError(err).Warn("Insight cache lookup failed")
		}
	}

	prompt, err := BuildPrompt(req.Module, req.Data, req.Locale)
	if err != nil {
		return nil, err
	}
	text, err := s.Generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}
	cards, err := ParseInsights(text)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		entry := models.CachedInsight{
			Key:       key,
			Module:    req.Module,
			Locale:    req.Locale,
			Insights:  cards,
			CreatedAt: s.now(),
		}
		if err := s.Cache.InsertInsight(ctx, entry); err != nil {
			logger.WithError(err).Warn("Failed to cache insights")
		}
	}

	logger.WithField("count", len(cards)).Info("Generated insights")
	return &models.InsightResponse{Insights: cards, Cached: false}, nil
}
