// internal/domain/models/requestcount.go
package models

import (
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxUserAgentLength is the longest user agent string stored on a RequestCount.
const MaxUserAgentLength = 150

// RequestCount records a single counted request to the server.
//
// StudentUniqueID and StudentSemester are potentially identifying and must
// only leave the server in aggregated form.
type RequestCount struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Path            string             `bson:"path" json:"path"`
	Timestamp       time.Time          `bson:"timestamp" json:"timestamp"`
	UserAgent       string             `bson:"user_agent" json:"user_agent"`
	IsAuthenticated bool               `bson:"is_authenticated" json:"is_authenticated"`
	StudentUniqueID string             `bson:"student_unique_id,omitempty" json:"-"`
	StudentSemester string             `bson:"student_semester,omitempty" json:"-"`
}

// TruncateUserAgent shortens ua to at most MaxUserAgentLength bytes,
// cutting on a rune boundary so the result stays valid UTF-8.
func TruncateUserAgent(ua string) string {
	if len(ua) <= MaxUserAgentLength {
		return ua
	}
	cut := MaxUserAgentLength
	for cut > 0 && !utf8.RuneStart(ua[cut]) {
		cut--
	}
	return ua[:cut]
}
