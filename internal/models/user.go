package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// MaxProfileTags caps the interests and emotions arrays.
const MaxProfileTags = 3

// MinPasswordLength applies to user-chosen passwords, not OAuth sentinels.
const MinPasswordLength = 6

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	Email    string `bson:"email" json:"email"`
	Password string `bson:"password,omitempty" json:"-"` // bcrypt hash or OAuth sentinel, never in JSON
	Username string `bson:"username" json:"username"`

	Interests []string `bson:"interests" json:"interests"`
	Emotions  []string `bson:"emotions" json:"emotions"`

	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`

	Role           string  `bson:"role" json:"role"`
	ProfilePicture *string `bson:"profilePicture" json:"profilePicture"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FollowerCount returns the size of the followers set.
func (u *User) FollowerCount() int {
	return len(u.Followers)
}

// ValidateTagList enforces the per-profile tag cap shared by interests and emotions.
func ValidateTagList(field string, tags []string) error {
	if len(tags) > MaxProfileTags {
		return fmt.Errorf("%s array cannot have more than %d items", field, MaxProfileTags)
	}
	return nil
}
