package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewRegistry()

	r, err := reg.Create("movie-night", "Movie Night")
	require.NoError(t, err)

	assert.Same(t, r, reg.Get("movie-night"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryRejectsTakenSlug(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create("movie-night", "Movie Night")
	require.NoError(t, err)

	_, err = reg.Create("movie-night", "Another Night")
	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryDelete(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create("movie-night", "Movie Night")
	require.NoError(t, err)

	assert.True(t, reg.Delete("movie-night"))
	assert.Nil(t, reg.Get("movie-night"))
	assert.False(t, reg.Delete("movie-night"))
}

func TestRegistryRooms(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create("one", "One")
	require.NoError(t, err)
	_, err = reg.Create("two", "Two")
	require.NoError(t, err)

	assert.Len(t, reg.Rooms(), 2)
}
