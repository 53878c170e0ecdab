package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidVisibility(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidVisibility(VisibilityPublic))
	assert.True(t, ValidVisibility(VisibilityFriends))
	assert.True(t, ValidVisibility(VisibilityPrivate))
	assert.False(t, ValidVisibility(""))
	assert.False(t, ValidVisibility("Public"))
	assert.False(t, ValidVisibility("unlisted"))
}

func TestMemoryLikesCount(t *testing.T) {
	t.Parallel()

	m := &Memory{Likes: []primitive.ObjectID{primitive.NewObjectID()}}
	assert.Equal(t, 1, m.LikesCount())
	assert.Equal(t, 0, (&Memory{}).LikesCount())
}
