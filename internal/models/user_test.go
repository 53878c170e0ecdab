package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateTagList(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateTagList("interests", nil))
	assert.NoError(t, ValidateTagList("interests", []string{"a", "b", "c"}))

	err := ValidateTagList("emotions", []string{"a", "b", "c", "d"})
	assert.EqualError(t, err, "emotions array cannot have more than 3 items")
}

func TestUserIsAdmin(t *testing.T) {
	t.Parallel()

	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}

func TestUserFollowerCount(t *testing.T) {
	t.Parallel()

	u := &User{Followers: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}}
	assert.Equal(t, 2, u.FollowerCount())
	assert.Equal(t, 0, (&User{}).FollowerCount())
}
