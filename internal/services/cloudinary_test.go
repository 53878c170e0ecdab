package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	t.Parallel()

	url := "https://res.cloudinary.com/demo/image/upload/v1699999999/aura-memories/abc123.jpg"
	assert.Equal(t, "aura-memories/abc123", PublicIDFromURL(url))

	// No extension
	assert.Equal(t, "aura-profile-pictures/xyz",
		PublicIDFromURL("https://res.cloudinary.com/demo/image/upload/aura-profile-pictures/xyz"))

	assert.Equal(t, "", PublicIDFromURL("not-a-url"))
}
