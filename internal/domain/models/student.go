// internal/domain/models/student.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Student links an access token to the student's identity.
type Student struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UniqueID        string             `bson:"unique_id"`
	CurrentSemester string             `bson:"current_semester"`
	AccessToken     string             `bson:"access_token"`
}
