// internal/domain/models/course.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Course is a catalog course. Only public courses are served.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SubjectID   string             `bson:"subject_id" json:"subject_id"`
	Title       string             `bson:"title" json:"title"`
	Units       int                `bson:"total_units" json:"total_units"`
	Level       string             `bson:"level,omitempty" json:"level,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Public      bool               `bson:"public" json:"-"`
}
