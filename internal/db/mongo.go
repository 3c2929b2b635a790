package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleet-insights/internal/models"
)

// ErrCacheMiss is returned when no fresh cached insight exists.
var ErrCacheMiss = errors.New("insight not cached")

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection wraps a MongoDB collection for insight cache operations.
type MongoCollection struct {
	Collection *mongo.Collection
}

// EnsureIndexes creates the lookup index on key and a TTL index on
// created_at so stale entries are removed by the server.
func (c *MongoCollection) EnsureIndexes(ctx context.Context, ttl time.Duration) error {
	if c.Collection == nil {
		return errNilCollection
	}
	seconds := int32(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	_, err := c.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "key", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(seconds)},
	})
	if err != nil {
		return fmt.Errorf("create insight indexes: %w", err)
	}
	return nil
}

// FindInsight finds the newest cache entry for key that is not older than notBefore.
func (c *MongoCollection) FindInsight(ctx context.Context, key string, notBefore time.Time) (*models.CachedInsight, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	filter := bson.M{"key": key, "created_at": bson.M{"$gte": notBefore}}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var cached models.CachedInsight
	err := c.Collection.FindOne(ctx, filter, opts).Decode(&cached)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return &cached, nil
}

// InsertInsight stores a cache entry.
func (c *MongoCollection) InsertInsight(ctx context.Context, insight models.CachedInsight) error {
	if c.Collection == nil {
		return errNilCollection
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, insight)
	return err
}

// DeleteAll deletes all cached insights from the collection.
func (c *MongoCollection) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return err
}
