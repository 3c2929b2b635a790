package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-insights/internal/models"
)

// InsightCollection defines the interface for insight cache operations.
type InsightCollection interface {
	// FindInsight returns the newest entry for key created at or after
	// notBefore, or ErrCacheMiss.
	FindInsight(ctx context.Context, key string, notBefore time.Time) (*models.CachedInsight, error)
	InsertInsight(ctx context.Context, insight models.CachedInsight) error
}
