// Package students resolves access tokens to students.
package students

import (
	"context"
	"errors"

	"github.com/dalemusser/stratadash/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for students.
const CollectionName = "students"

// ErrNotFound is returned when no student owns the token.
var ErrNotFound = errors.New("student not found")

// Store provides student lookups.
type Store struct {
	c *mongo.Collection
}

// New creates a new student store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Create inserts a student.
func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

// GetByToken returns the student owning token.
func (s *Store) GetByToken(ctx context.Context, token string) (models.Student, error) {
	if token == "" {
		return models.Student{}, ErrNotFound
	}
	var st models.Student
	err := s.c.FindOne(ctx, bson.M{"access_token": token}).Decode(&st)
	if err == mongo.ErrNoDocuments {
		return models.Student{}, ErrNotFound
	}
	if err != nil {
		return models.Student{}, err
	}
	return st, nil
}
