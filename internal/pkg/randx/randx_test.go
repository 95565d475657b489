package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserID(t *testing.T) {
	id := NewUserID()

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, NewUserID())
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"movie-night", "room_1", "a", "ABC-123", strings.Repeat("x", MaxSlugLength)}
	for _, slug := range valid {
		assert.True(t, IsValidSlug(slug), slug)
	}

	invalid := []string{"", "has space", "sla/sh", "ümlaut", strings.Repeat("x", MaxSlugLength+1)}
	for _, slug := range invalid {
		assert.False(t, IsValidSlug(slug), slug)
	}
}

func TestGravatarHash(t *testing.T) {
	hash := GravatarHash("  Alice@Example.COM ")

	assert.True(t, IsGravatarHash(hash))
	assert.Equal(t, GravatarHash("alice@example.com"), hash)
}

func TestIsGravatarHash(t *testing.T) {
	assert.False(t, IsGravatarHash(""))
	assert.False(t, IsGravatarHash("zz"+strings.Repeat("0", 62)))
	assert.True(t, IsGravatarHash(strings.Repeat("0", 64)))
}
