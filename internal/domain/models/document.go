// internal/domain/models/document.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentKind names the collection a synced user document lives in.
type DocumentKind string

const (
	DocumentKindRoad     DocumentKind = "roads"
	DocumentKindSchedule DocumentKind = "schedules"
)

// Document is a user's synced road or schedule. Roads and schedules share
// the same shape and differ only by collection.
type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name         string             `bson:"name" json:"name"`
	Contents     string             `bson:"contents" json:"contents"`
	ModifiedDate time.Time          `bson:"modified_date" json:"modified_date"`
	LastAgent    string             `bson:"last_agent" json:"last_agent"`
}
