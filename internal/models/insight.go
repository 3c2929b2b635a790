package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InsightModule names the dashboard page an insight request comes from.
type InsightModule string

const (
	InsightDashboard InsightModule = "dashboard"
	InsightDrivers   InsightModule = "drivers"
	InsightHealth    InsightModule = "health"
	InsightFuel      InsightModule = "fuel"
)

// InsightSeverity is the tone of an insight card.
type InsightSeverity string

const (
	InsightInfo     InsightSeverity = "info"
	InsightWarning  InsightSeverity = "warning"
	InsightCritical InsightSeverity = "critical"
	InsightPositive InsightSeverity = "positive"
)

// Insight is one AI generated card.
type Insight struct {
	Severity    InsightSeverity `json:"severity" bson:"severity"`
	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description" bson:"description"`
}

// InsightRequest is the body of POST /api/insights.
type InsightRequest struct {
	Module InsightModule  `json:"module"`
	Data   map[string]any `json:"data"`
	Locale string         `json:"locale"`
}

// InsightResponse is returned to the dashboard.
type InsightResponse struct {
	Insights []Insight `json:"insights"`
	Cached   bool      `json:"cached"`
}

// CachedInsight is the cache document stored in MongoDB.
type CachedInsight struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key       string             `bson:"key" json:"key"`
	Module    InsightModule      `bson:"module" json:"module"`
	Locale    string             `bson:"locale" json:"locale"`
	Insights  []Insight          `bson:"insights" json:"insights"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidInsightModule checks if a module is known.
func IsValidInsightModule(m InsightModule) bool {
	switch m {
	case InsightDashboard, InsightDrivers, InsightHealth, InsightFuel:
		return true
	default:
		return false
	}
}

// IsValidInsightSeverity checks if a severity is known.
func IsValidInsightSeverity(s InsightSeverity) bool {
	switch s {
	case InsightInfo, InsightWarning, InsightCritical, InsightPositive:
		return true
	default:
		return false
	}
}
