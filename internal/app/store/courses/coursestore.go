// Package courses provides read access to the course catalog.
package courses

import (
	"context"

	"github.com/dalemusser/stratadash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for courses.
const CollectionName = "courses"

// Store provides course persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new course store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Upsert inserts or replaces the course with the same subject ID.
func (s *Store) Upsert(ctx context.Context, c models.Course) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	set := bson.M{
		"subject_id":  c.SubjectID,
		"title":       c.Title,
		"total_units": c.Units,
		"level":       c.Level,
		"description": c.Description,
		"public":      c.Public,
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"subject_id": c.SubjectID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"_id": c.ID}},
		options.Update().SetUpsert(true),
	)
	return err
}

// ListPublic returns all public courses ordered by subject ID.
func (s *Store) ListPublic(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "subject_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"public": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Course
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
