// Package documents provides read access to synced roads and schedules.
package documents

import (
	"context"
	"time"

	"github.com/dalemusser/stratadash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads roads and schedules.
type Store struct {
	roads     *mongo.Collection
	schedules *mongo.Collection
}

// New creates a new document store.
func New(db *mongo.Database) *Store {
	return &Store{
		roads:     db.Collection(string(models.DocumentKindRoad)),
		schedules: db.Collection(string(models.DocumentKindSchedule)),
	}
}

func (s *Store) coll(kind models.DocumentKind) *mongo.Collection {
	if kind == models.DocumentKindSchedule {
		return s.schedules
	}
	return s.roads
}

// Insert saves a document of the given kind.
func (s *Store) Insert(ctx context.Context, kind models.DocumentKind, doc models.Document) (models.Document, error) {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.ModifiedDate.IsZero() {
		doc.ModifiedDate = time.Now().UTC()
	}
	if _, err := s.coll(kind).InsertOne(ctx, doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// CountModified returns how many documents of kind were modified at or after since.
func (s *Store) CountModified(ctx context.Context, kind models.DocumentKind, since time.Time) (int64, error) {
	return s.coll(kind).CountDocuments(ctx, bson.M{
		"modified_date": bson.M{"$gte": since.UTC()},
	})
}

// ActiveCounts holds the number of recently modified roads and schedules.
type ActiveCounts struct {
	Roads     int64 `json:"roads"`
	Schedules int64 `json:"schedules"`
}

// CountActive counts both kinds modified at or after since.
func (s *Store) CountActive(ctx context.Context, since time.Time) (ActiveCounts, error) {
	roads, err := s.CountModified(ctx, models.DocumentKindRoad, since)
	if err != nil {
		return ActiveCounts{}, err
	}
	schedules, err := s.CountModified(ctx, models.DocumentKindSchedule, since)
	if err != nil {
		return ActiveCounts{}, err
	}
	return ActiveCounts{Roads: roads, Schedules: schedules}, nil
}
