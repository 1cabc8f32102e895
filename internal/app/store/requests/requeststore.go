// Package requests provides storage for counted requests.
package requests

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratadash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for counted requests.
const CollectionName = "request_counts"

// ErrStop can be returned from an Each callback to end iteration early
// without reporting an error.
var ErrStop = errors.New("stop iteration")

// Store provides request count persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new request count store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Insert saves a request count. A zero ID or Timestamp is filled in.
func (s *Store) Insert(ctx context.Context, rc models.RequestCount) (models.RequestCount, error) {
	if rc.ID.IsZero() {
		rc.ID = primitive.NewObjectID()
	}
	if rc.Timestamp.IsZero() {
		rc.Timestamp = time.Now().UTC()
	}
	rc.UserAgent = models.TruncateUserAgent(rc.UserAgent)

	if _, err := s.c.InsertOne(ctx, rc); err != nil {
		return models.RequestCount{}, err
	}
	return rc, nil
}

// Each streams request counts with start <= timestamp < end, oldest first.
func (s *Store) Each(ctx context.Context, start, end time.Time, fn func(models.RequestCount) error) error {
	filter := bson.M{
		"timestamp": bson.M{
			"$gte": start.UTC(),
			"$lt":  end.UTC(),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var rc models.RequestCount
		if err := cur.Decode(&rc); err != nil {
			return err
		}
		if err := fn(rc); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return cur.Err()
}

// Count returns the number of request counts with start <= timestamp < end.
func (s *Store) Count(ctx context.Context, start, end time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"timestamp": bson.M{
			"$gte": start.UTC(),
			"$lt":  end.UTC(),
		},
	})
}

// DeleteOlderThan removes request counts recorded before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
