package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility tiers for a memory. "friends" is reserved: it is stored and treated
// as non-public but not distinctly enforced beyond the public/non-public split.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// MaxCaptionLength caps memory captions.
const MaxCaptionLength = 500

// Comment is an embedded subdocument; comments are append-only, there is no
// per-comment edit or delete.
type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Memory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	User    primitive.ObjectID `bson:"user" json:"user"`
	Caption string             `bson:"caption" json:"caption"`
	Image   *string            `bson:"image" json:"image"`

	Emotions []string `bson:"emotions" json:"emotions"`

	// Likes has set semantics: at most one entry per user, maintained with
	// $addToSet / $pull so concurrent toggles cannot duplicate entries.
	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments []Comment            `bson:"comments" json:"comments"`

	Visibility string `bson:"visibility" json:"visibility"`
}

// LikesCount returns the derived like counter included in API responses.
func (m *Memory) LikesCount() int {
	return len(m.Likes)
}

// ValidVisibility reports whether v is one of the known tiers.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}
