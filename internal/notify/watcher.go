package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/models"
)

// VehicleLister returns the current vehicles of a group.
type VehicleLister interface {
	Vehicles(ctx context.Context, groupCode string) ([]models.Vehicle, error)
}

// Watcher polls a group's vehicles and publishes new alerts.
type Watcher struct {
	Group     string
	Interval  time.Duration
	Source    VehicleLister
	Dedup     Deduper
	Publisher Publisher
	Now       func() time.Time
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithFields(log.Fields{"group": w.Group, "interval": interval}).Info("Alert watcher started")
	for {
		if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).WithField("group", w.Group).Warn("Alert poll failed")
		}
		select {
		case <-ctx.Done():
			log.Info("Alert watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one check and returns how many alerts were published.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	vehicles, err := w.Source.Vehicles(ctx, w.Group)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}

	published := 0
	for _, alert := range analytics.DetectAlerts(vehicles, now) {
		logger := log.WithFields(log.Fields{"vehicle_code": alert.VehicleCode, "kind": alert.Kind})

		fresh, err := w.Dedup.Claim(ctx, alert.VehicleCode, alert.Kind)
		if err != nil {
			logger.WithError(err).Warn("Alert dedup failed")
			continue
		}
		if !fresh {
			continue
		}

		alert.ID = uuid.NewString()
		if err := w.Publisher.Publish(w.Group, alert); err != nil {
			logger.WithError(err).Warn("Alert publish failed")
			continue
		}
		published++
	}
	if published > 0 {
		log.WithFields(log.Fields{"group": w.Group, "count": published}).Info("Published alerts")
	}
	return published, nil
}
